package controllers

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"net/http"
	"strings"

	"github.com/boosthq/boosthq-backend/api/responses"
	"github.com/boosthq/boosthq-backend/api/validators"
	internalfruits "github.com/boosthq/boosthq-backend/internal/fruits"
	"github.com/boosthq/boosthq-backend/pkg/config"
	pkgerrors "github.com/boosthq/boosthq-backend/pkg/errors"
	"github.com/boosthq/boosthq-backend/pkg/logger"
	pkgredis "github.com/boosthq/boosthq-backend/pkg/redis"
)

type fruitWebhookRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type fruitWebhookResponse struct {
	Fruit   FruitView `json:"fruit"`
	Message string    `json:"message"`
}

// FruitWebhook ingests a fruit-found notification from the stock
// reporter bot. Each distinct message is applied at most once per
// dedupe window, so bot retries do not double-count stock.
func FruitWebhook(svc internalfruits.Service, store pkgredis.IdempotencyStore, cfg config.WebhookConfig, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fruits service unavailable"))
			return
		}

		if cfg.FruitSecret != "" {
			presented := strings.TrimSpace(r.Header.Get("X-Webhook-Secret"))
			if !hmac.Equal([]byte(presented), []byte(cfg.FruitSecret)) {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeUnauthorized, "invalid webhook secret"))
				return
			}
		}

		var body fruitWebhookRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var dedupeKey string
		if store != nil {
			sum := sha256.Sum256([]byte(body.Content))
			dedupeKey = pkgredis.WebhookDedupeKey(hex.EncodeToString(sum[:]))
			fresh, err := store.SetNX(r.Context(), dedupeKey, "1", cfg.DedupeTTL)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "webhook dedupe check"))
				return
			}
			if !fresh {
				responses.WriteSuccess(w, map[string]string{"status": "duplicate_ignored"})
				return
			}
		}

		result, err := svc.IngestWebhookReport(r.Context(), internalfruits.WebhookReport{Content: body.Content})
		if err != nil {
			// release the dedupe slot so the bot's retry of the same
			// message is not swallowed after a transient failure
			if dedupeKey != "" {
				if delErr := store.Del(r.Context(), dedupeKey); delErr != nil && logg != nil {
					logg.Error(r.Context(), "release webhook dedupe key", delErr)
				}
			}
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, fruitWebhookResponse{
			Fruit:   fruitView(result.Sku),
			Message: result.Message,
		})
	}
}
