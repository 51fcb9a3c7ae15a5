package quotes

import (
	"context"
	"errors"
	"fmt"

	"github.com/russianinvestments/invest-api-go-sdk/investgo"
	"github.com/sirupsen/logrus"
)

var ErrNoQuote = errors.New("no last price for instrument")

type lastPricesClient interface {
	GetLastPrices(instrumentIds []string) (*investgo.GetLastPricesResponse, error)
}

// InvestProvider resolves last prices through the Invest API market data service.
type InvestProvider struct {
	prices lastPricesClient
	logger *logrus.Entry
	stop   func() error
}

type Config struct {
	Token    string
	Endpoint string
	AppName  string
}

func NewInvestProvider(ctx context.Context, cfg Config, logger *logrus.Logger) (*InvestProvider, error) {
	if cfg.Token == "" {
		return nil, errors.New("invest api token is required")
	}
	client, err := investgo.NewClient(ctx, investgo.Config{
		EndPoint: cfg.Endpoint,
		Token:    cfg.Token,
		AppName:  cfg.AppName,
	}, logger)
	if err != nil {
		return nil, fmt.Errorf("create invest api client: %w", err)
	}
	return &InvestProvider{
		prices: client.NewMarketDataServiceClient(),
		logger: logger.WithField("component", "quotes"),
		stop:   client.Stop,
	}, nil
}

func (p *InvestProvider) LastPrice(ctx context.Context, instrumentUID string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	resp, err := p.prices.GetLastPrices([]string{instrumentUID})
	if err != nil {
		return 0, fmt.Errorf("get last prices: %w", err)
	}
	for _, lp := range resp.GetLastPrices() {
		if lp.GetInstrumentUid() != instrumentUID && lp.GetFigi() != instrumentUID {
			continue
		}
		price := lp.GetPrice()
		if price == nil {
			break
		}
		value := price.ToFloat()
		if value <= 0 {
			break
		}
		return value, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNoQuote, instrumentUID)
}

func (p *InvestProvider) Close() {
	if p == nil || p.stop == nil {
		return
	}
	if err := p.stop(); err != nil {
		p.logger.WithError(err).Error("stop invest api client")
	}
}
