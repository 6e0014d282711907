package worker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/likbrus/likbrus.github.io/internal/model"
	"github.com/likbrus/likbrus.github.io/internal/repository"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

// Enqueuer is satisfied by *Dispatcher.
type Enqueuer interface {
	EnqueueEmail(ctx context.Context, payload interface{}) error
}

// SummaryConfig holds the dependencies of the daily summary job.
type SummaryConfig struct {
	Products  repository.ProductRepository
	Sales     repository.SaleRepository
	Queue     Enqueuer
	To        string
	Spec      string // cron spec, e.g. "@daily" or "0 0 22 * * *"
	Threshold int
	ClubName  string
}

// Summary is the content of one daily mail.
type Summary struct {
	ClubName    string
	TakenAt     time.Time
	TotalProfit decimal.Decimal
	LowStock    []model.Product
	Threshold   int
}

// StartSummaryCron schedules the summary mail. The caller stops the
// returned scheduler on shutdown. With no recipient nothing is scheduled.
func StartSummaryCron(ctx context.Context, cfg SummaryConfig) (*cron.Cron, error) {
	sched := cron.New(cron.WithParser(cronParser))
	if cfg.To == "" {
		log.Info().Msg("summary_cron: NOTIFY_EMAIL empty, not scheduled")
		return sched, nil
	}
	_, err := sched.AddFunc(cfg.Spec, func() {
		defer func() {
			if r := recover(); r != nil {
				log.Error().Interface("panic", r).Msg("summary_cron: recovered")
			}
		}()
		if err := SendSummary(ctx, cfg); err != nil {
			log.Error().Err(err).Msg("summary_cron: failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("summary_cron: bad spec %q: %w", cfg.Spec, err)
	}
	sched.Start()
	log.Info().Str("spec", cfg.Spec).Str("to", cfg.To).Msg("summary_cron: started")
	return sched, nil
}

// SendSummary builds the summary and enqueues it as an email job.
func SendSummary(ctx context.Context, cfg SummaryConfig) error {
	s, err := BuildSummary(ctx, cfg.Products, cfg.Sales, cfg.Threshold)
	if err != nil {
		return err
	}
	s.ClubName = cfg.ClubName
	return cfg.Queue.EnqueueEmail(ctx, EmailJobPayload{
		ToEmail: cfg.To,
		Subject: s.Subject(),
		Body:    s.Body(),
	})
}

func BuildSummary(ctx context.Context, products repository.ProductRepository, sales repository.SaleRepository, threshold int) (*Summary, error) {
	total, err := sales.TotalProfit(ctx)
	if err != nil {
		return nil, fmt.Errorf("total profit: %w", err)
	}
	low, err := products.ListLowStock(ctx, threshold)
	if err != nil {
		return nil, fmt.Errorf("low stock: %w", err)
	}
	return &Summary{TakenAt: time.Now(), TotalProfit: total, LowStock: low, Threshold: threshold}, nil
}

func (s *Summary) Subject() string {
	return fmt.Sprintf("%s: status %s", s.ClubName, s.TakenAt.Format("02.01.2006"))
}

func (s *Summary) Body() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total fortjeneste: kr %s\n\n", s.TotalProfit.StringFixed(2))
	if len(s.LowStock) == 0 {
		fmt.Fprintf(&b, "Ingen produkter med %d eller færre på lager.\n", s.Threshold)
		return b.String()
	}
	fmt.Fprintf(&b, "Lite på lager (%d eller færre):\n", s.Threshold)
	for _, p := range s.LowStock {
		fmt.Fprintf(&b, "  - %s: %d\n", p.Name, p.Stock)
	}
	return b.String()
}
