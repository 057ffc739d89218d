package usecase

import (
	"context"
	"errors"
	"sync"

	"CoinPulse/internal/domain/models"
)

type stubMarket struct {
	mu    sync.Mutex
	price float64
	err   error
	calls int
}

func (s *stubMarket) Fetch(_ context.Context, symbol string) (models.MarketData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	if s.err != nil {
		return models.MarketData{}, s.err
	}
	return models.MarketData{
		Snapshot: models.MarketSnapshot{ID: symbol, Symbol: "BTC", Price: s.price},
	}, nil
}

type stubNews struct {
	posts []models.NewsPost
	err   error
	calls int
	last  string
}

func (s *stubNews) Posts(_ context.Context, currency string, limit int) ([]models.NewsPost, error) {
	s.calls++
	s.last = currency
	if s.err != nil {
		return nil, s.err
	}
	if limit < len(s.posts) {
		return s.posts[:limit], nil
	}
	return s.posts, nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	market []*models.MarketEvent
	news   []*models.ScoredNews
	fail   bool
}

func (p *recordingPublisher) PublishMarket(_ context.Context, ev *models.MarketEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.market = append(p.market, ev)
	return nil
}

func (p *recordingPublisher) PublishScoredNews(_ context.Context, n *models.ScoredNews) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return errors.New("broker down")
	}
	p.news = append(p.news, n)
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) marketCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.market)
}

func (p *recordingPublisher) newsCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.news)
}
