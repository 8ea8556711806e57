package portfolio

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
)

// TargetWeightTolerance 목표 비중 합계 허용 오차 (%p)
const TargetWeightTolerance = 0.01

// Service 포트폴리오 조회 / 리밸런싱 서비스
type Service struct {
	holdings portfolio.HoldingsProvider
	targets  portfolio.TargetRepository
}

// NewService creates a new portfolio service
func NewService(holdings portfolio.HoldingsProvider, targets portfolio.TargetRepository) *Service {
	return &Service{
		holdings: holdings,
		targets:  targets,
	}
}

// Balance returns the user's raw balance
func (s *Service) Balance(ctx context.Context, userID string) (*portfolio.Balance, error) {
	bal, err := s.holdings.GetBalance(ctx, userID)
	if err != nil {
		if errors.Is(err, portfolio.ErrHoldingsUnavailable) {
			return nil, fmt.Errorf("get balance: %w", err)
		}
		return nil, fmt.Errorf("get balance: %w: %v", portfolio.ErrHoldingsUnavailable, err)
	}
	return bal, nil
}

// Allocation returns the merged per-instrument weights
func (s *Service) Allocation(ctx context.Context, userID string, includeCash bool) ([]portfolio.AllocationItem, error) {
	bal, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return Allocation(bal.Holdings, includeCash, bal.Summary.TotalDeposit), nil
}

// AssetTypes returns the stock/bond/fund/cash breakdown
func (s *Service) AssetTypes(ctx context.Context, userID string) ([]portfolio.AssetTypeItem, error) {
	bal, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}
	return AssetTypeAllocation(bal.Holdings, bal.Summary.TotalDeposit), nil
}

// Rebalance computes the plan from stored targets and live holdings
// 총자산 = 평가금액 합계 + 예수금
func (s *Service) Rebalance(ctx context.Context, userID string) (*portfolio.RebalancePlan, error) {
	targets, err := s.targets.GetTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get targets: %w", err)
	}

	bal, err := s.Balance(ctx, userID)
	if err != nil {
		return nil, err
	}

	current := Allocation(bal.Holdings, true, bal.Summary.TotalDeposit)

	total := bal.Summary.TotalDeposit
	for _, item := range current {
		if item.StockCode != portfolio.CashCode {
			total += item.EvalAmount
		}
	}

	var targetSum float64
	for _, t := range targets {
		targetSum += t.TargetWeight
	}

	plan := &portfolio.RebalancePlan{
		Targets:           Rebalance(current, targets, total),
		TotalTargetWeight: targetSum,
		TotalAssetValue:   total,
	}

	log.Debug().
		Str("user_id", userID).
		Int("targets", len(targets)).
		Float64("total_asset", total).
		Msg("Rebalance plan computed")

	return plan, nil
}

// Targets returns the stored target weights
func (s *Service) Targets(ctx context.Context, userID string) ([]portfolio.TargetWeight, error) {
	targets, err := s.targets.GetTargets(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("get targets: %w", err)
	}
	return targets, nil
}

// TargetWeights returns stored targets keyed by code (nil map when none)
func (s *Service) TargetWeights(ctx context.Context, userID string) (map[string]float64, error) {
	targets, err := s.Targets(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make(map[string]float64, len(targets))
	for _, t := range targets {
		out[t.StockCode] = t.TargetWeight
	}
	return out, nil
}

// SaveTargets validates and replaces the user's target weights
func (s *Service) SaveTargets(ctx context.Context, userID string, targets []portfolio.TargetWeight) error {
	if err := ValidateTargets(targets); err != nil {
		return err
	}
	if err := s.targets.SaveTargets(ctx, userID, targets); err != nil {
		return fmt.Errorf("save targets: %w", err)
	}

	log.Info().Str("user_id", userID).Int("count", len(targets)).Msg("Target weights saved")
	return nil
}

// ValidateTargets checks each weight is within 0..100, codes are unique
// and the total does not exceed 100%
func ValidateTargets(targets []portfolio.TargetWeight) error {
	seen := make(map[string]struct{}, len(targets))
	var sum float64

	for _, t := range targets {
		if t.StockCode == "" {
			return fmt.Errorf("%w: empty stock code", portfolio.ErrInvalidTargets)
		}
		if _, dup := seen[t.StockCode]; dup {
			return fmt.Errorf("%w: duplicate stock code %s", portfolio.ErrInvalidTargets, t.StockCode)
		}
		seen[t.StockCode] = struct{}{}

		if math.IsNaN(t.TargetWeight) || t.TargetWeight < 0 || t.TargetWeight > 100 {
			return fmt.Errorf("%w: %s weight %.2f out of range", portfolio.ErrInvalidTargets, t.StockCode, t.TargetWeight)
		}
		sum += t.TargetWeight
	}

	if sum > 100+TargetWeightTolerance {
		return fmt.Errorf("%w: total %.2f exceeds 100", portfolio.ErrInvalidTargets, sum)
	}
	return nil
}
