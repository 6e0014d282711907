package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// ResetPhrase must be typed (case and surrounding space ignored) to wipe
// the store.
const ResetPhrase = "slett alt"

// Reset stages, in execution order. Sales go first so nothing ever
// references a product that is already gone.
const (
	StageSales     = "sales"
	StagePurchases = "purchases"
	StageProducts  = "products"
)

// ConfirmationMatches reports whether text is the reset phrase.
func ConfirmationMatches(text string) bool {
	return strings.ToLower(strings.TrimSpace(text)) == ResetPhrase
}

type ResetService interface {
	ResetAll(ctx context.Context, actor *Identity, confirmation string) error
}

type resetService struct {
	products    repository.ProductRepository
	purchases   repository.PurchaseRepository
	sales       repository.SaleRepository
	notifier    ChangeNotifier
	mail        EmailQueue
	notifyEmail string
}

func NewResetService(
	products repository.ProductRepository,
	purchases repository.PurchaseRepository,
	sales repository.SaleRepository,
	notifier ChangeNotifier,
	mail EmailQueue,
	notifyEmail string,
) ResetService {
	return &resetService{
		products:    products,
		purchases:   purchases,
		sales:       sales,
		notifier:    notifier,
		mail:        mail,
		notifyEmail: notifyEmail,
	}
}

// ResetAll deletes every sale, purchase and product in one transaction.
// Privilege is checked before the confirmation text. Resetting an empty
// store succeeds.
func (s *resetService) ResetAll(ctx context.Context, actor *Identity, confirmation string) error {
	if actor == nil || !actor.Privileged {
		return ErrForbidden
	}
	if !ConfirmationMatches(confirmation) {
		return invalidField("Skriv SLETT ALT for å bekrefte.", "confirmation", "mismatch")
	}

	stages := []struct {
		name string
		del  func(tx *gorm.DB) (int64, error)
	}{
		{StageSales, s.sales.DeleteAllTx},
		{StagePurchases, s.purchases.DeleteAllTx},
		{StageProducts, s.products.DeleteAllTx},
	}
	deleted := map[string]int64{}

	err := runTx(ctx, s.products.DB(), func(tx *gorm.DB) error {
		for _, st := range stages {
			n, err := st.del(tx)
			if err != nil {
				return &ResetError{Stage: st.name, Err: err}
			}
			deleted[st.name] = n
		}
		return nil
	})
	if err != nil {
		log.Error().Err(err).Str("actor", actor.Email).Msg("reset failed")
		return err
	}

	log.Warn().
		Str("actor", actor.Email).
		Int64("sales", deleted[StageSales]).
		Int64("purchases", deleted[StagePurchases]).
		Int64("products", deleted[StageProducts]).
		Msg("store reset")

	for _, table := range []string{model.TableSales, model.TablePurchases, model.TableProducts} {
		publish(ctx, s.notifier, model.ChangeEvent{Table: table, Op: model.OpDelete})
	}
	s.notifyReset(ctx, actor, deleted)
	return nil
}

func (s *resetService) notifyReset(ctx context.Context, actor *Identity, deleted map[string]int64) {
	if s.mail == nil || s.notifyEmail == "" {
		return
	}
	body := fmt.Sprintf(
		"%s tilbakestilte alt %s.\n\nSlettet: %d salg, %d innkjøp, %d produkter.\n",
		actor.Email, time.Now().Format("02.01.2006 15:04"),
		deleted[StageSales], deleted[StagePurchases], deleted[StageProducts],
	)
	payload := map[string]interface{}{
		"to_email": s.notifyEmail,
		"subject":  "Lageret er tilbakestilt",
		"body":     body,
	}
	if err := s.mail.EnqueueEmail(ctx, payload); err != nil {
		log.Warn().Err(err).Msg("could not enqueue reset notice")
	}
}
