package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/ayoo/app/models"
	"github.com/shashiranjanraj/ayoo/app/repositories"
	"github.com/shashiranjanraj/ayoo/pkg/cache"
	"github.com/shashiranjanraj/ayoo/pkg/logger"
)

const (
	statsCacheKey = "ayoo:admin:stats"
	statsCacheTTL = 60 * time.Second
	chartDays     = 7
)

// ChartPoint is one day of the admin chart.
type ChartPoint struct {
	Date    string          `json:"date"`
	Day     string          `json:"day"`
	Revenue decimal.Decimal `json:"revenue"`
	Orders  int             `json:"orders"`
}

// Stats is the admin dashboard summary. Revenue counts delivered orders
// only.
type Stats struct {
	Users       int64           `json:"users"`
	Restaurants int64           `json:"restaurants"`
	Orders      int64           `json:"orders"`
	Revenue     decimal.Decimal `json:"revenue"`
	ChartData   []ChartPoint    `json:"chartData"`
}

type StatsService struct {
	orders      *repositories.OrderRepository
	users       *repositories.UserRepository
	restaurants *repositories.RestaurantRepository
	cache       *cache.Store
	now         func() time.Time
}

func NewStatsService(orders *repositories.OrderRepository, users *repositories.UserRepository, restaurants *repositories.RestaurantRepository, store *cache.Store) *StatsService {
	return &StatsService{orders: orders, users: users, restaurants: restaurants, cache: store, now: time.Now}
}

// Get returns the cached summary, computing it on a miss.
func (s *StatsService) Get(ctx context.Context) (*Stats, error) {
	return cache.Remember(ctx, s.cache, statsCacheKey, statsCacheTTL, s.Compute)
}

// Forget drops the cached summary. Order listeners call it after writes
// that move counts or revenue.
func (s *StatsService) Forget(ctx context.Context) error {
	return s.cache.Del(ctx, statsCacheKey)
}

// Warm recomputes the summary and stores it.
func (s *StatsService) Warm(ctx context.Context) error {
	st, err := s.Compute(ctx)
	if err != nil {
		return err
	}
	if err := s.cache.Set(ctx, statsCacheKey, st, statsCacheTTL); err != nil {
		return fmt.Errorf("cache stats: %w", err)
	}
	logger.WithCtx(ctx).Debug("admin stats warmed", "orders", st.Orders)
	return nil
}

// Compute builds the summary from the database.
func (s *StatsService) Compute(ctx context.Context) (*Stats, error) {
	st := &Stats{Revenue: decimal.Zero}
	var err error
	if st.Users, err = s.users.Count(ctx); err != nil {
		return nil, err
	}
	if st.Restaurants, err = s.restaurants.Count(ctx); err != nil {
		return nil, err
	}
	if st.Orders, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}

	delivered, err := s.orders.DeliveredTotals(ctx)
	if err != nil {
		return nil, err
	}
	for _, o := range delivered {
		st.Revenue = st.Revenue.Add(o.Total)
	}

	today := s.now().UTC().Truncate(24 * time.Hour)
	first := today.AddDate(0, 0, -(chartDays - 1))
	recent, err := s.orders.Since(ctx, first)
	if err != nil {
		return nil, err
	}

	st.ChartData = make([]ChartPoint, chartDays)
	index := make(map[string]int, chartDays)
	for i := range st.ChartData {
		day := first.AddDate(0, 0, i)
		st.ChartData[i] = ChartPoint{
			Date:    day.Format("Jan 2"),
			Day:     day.Format(time.DateOnly),
			Revenue: decimal.Zero,
		}
		index[st.ChartData[i].Day] = i
	}
	for _, o := range recent {
		i, ok := index[o.CreatedAt.UTC().Format(time.DateOnly)]
		if !ok {
			continue
		}
		st.ChartData[i].Orders++
		if o.Status == models.StatusDelivered {
			st.ChartData[i].Revenue = st.ChartData[i].Revenue.Add(o.Total)
		}
	}
	return st, nil
}
