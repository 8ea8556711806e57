package kis

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
	"github.com/nkjh2020/investment-manager/internal/pkg/config"
)

// ==============================================================================
// Account source
// ==============================================================================

// AccountSource resolves the brokerage accounts linked to a user
type AccountSource interface {
	Accounts(ctx context.Context, userID string) ([]config.KISAccount, error)
}

// StaticAccounts serves the same configured accounts to every user
type StaticAccounts []config.KISAccount

// Accounts implements AccountSource
func (s StaticAccounts) Accounts(context.Context, string) ([]config.KISAccount, error) {
	return s, nil
}

// ==============================================================================
// Balance provider
// ==============================================================================

// BalanceProvider implements portfolio.HoldingsProvider on top of the KIS REST API.
// 계좌별로 동시에 조회하고, 실패한 계좌는 Error만 채워서 나머지 결과는 유지함.
type BalanceProvider struct {
	rest     *RESTClient
	accounts AccountSource
}

// NewBalanceProvider creates a new BalanceProvider
func NewBalanceProvider(rest *RESTClient, accounts AccountSource) *BalanceProvider {
	return &BalanceProvider{rest: rest, accounts: accounts}
}

// GetBalance implements portfolio.HoldingsProvider
func (p *BalanceProvider) GetBalance(ctx context.Context, userID string) (*portfolio.Balance, error) {
	accounts, err := p.accounts.Accounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: resolve accounts: %v", portfolio.ErrHoldingsUnavailable, err)
	}
	if len(accounts) == 0 {
		return nil, fmt.Errorf("%w: %w", portfolio.ErrHoldingsUnavailable, portfolio.ErrNoAccounts)
	}

	results := make([]portfolio.AccountBalance, len(accounts))

	var g errgroup.Group
	for i, acc := range accounts {
		g.Go(func() error {
			results[i] = p.fetchAccount(ctx, acc)
			return nil
		})
	}
	_ = g.Wait()

	balance := &portfolio.Balance{
		Holdings: []portfolio.Holding{},
		Accounts: results,
	}

	var summaries []portfolio.AccountSummary
	var failures []string
	for _, r := range results {
		if r.Error != "" {
			failures = append(failures, fmt.Sprintf("%s: %s", r.AccountLabel, r.Error))
			continue
		}
		balance.Holdings = append(balance.Holdings, r.Holdings...)
		summaries = append(summaries, r.Summary)
	}

	if len(summaries) == 0 {
		return nil, fmt.Errorf("%w: %s", portfolio.ErrHoldingsUnavailable, strings.Join(failures, "; "))
	}

	balance.Summary = MergeSummaries(summaries)

	log.Debug().
		Str("user_id", userID).
		Int("accounts", len(accounts)).
		Int("failed", len(failures)).
		Int("holdings", len(balance.Holdings)).
		Msg("KIS balance fetched")

	return balance, nil
}

func (p *BalanceProvider) fetchAccount(ctx context.Context, acc config.KISAccount) portfolio.AccountBalance {
	out := portfolio.AccountBalance{
		AccountID:    acc.ID,
		AccountLabel: acc.Label,
		Holdings:     []portfolio.Holding{},
		Summary:      portfolio.AccountSummary{AccountID: acc.ID, AccountLabel: acc.Label},
	}

	pages, err := p.rest.InquireBalance(ctx, Credentials{
		AppKey:      acc.AppKey,
		AppSecret:   acc.AppSecret,
		AccountNo:   acc.AccountNo,
		ProductCode: acc.ProductCode,
	})
	if err != nil {
		log.Error().Err(err).Str("account", acc.Label).Msg("KIS balance fetch failed")
		out.Error = err.Error()
		return out
	}

	out.Holdings = toHoldings(pages.Holdings, acc)
	out.Summary = toSummary(pages.Summary, acc)
	return out
}

// MergeSummaries sums account summaries; the profit rate is recomputed from the sums
func MergeSummaries(summaries []portfolio.AccountSummary) portfolio.AccountSummary {
	merged := portfolio.AccountSummary{
		AccountID:    portfolio.MergedAccountID,
		AccountLabel: portfolio.MergedAccountLabel,
	}
	for _, s := range summaries {
		merged.TotalDeposit += s.TotalDeposit
		merged.TotalEvaluation += s.TotalEvaluation
		merged.TotalPurchaseAmount += s.TotalPurchaseAmount
		merged.TotalEvalProfit += s.TotalEvalProfit
		merged.D1Deposit += s.D1Deposit
		merged.D2Deposit += s.D2Deposit
		merged.TodayBuyAmount += s.TodayBuyAmount
		merged.TodaySellAmount += s.TodaySellAmount
	}
	merged.TotalEvalProfitRate = profitRate(merged.TotalEvalProfit, merged.TotalPurchaseAmount)
	return merged
}

// ==============================================================================
// Conversion
// ==============================================================================

// toHoldings drops zero-quantity rows (당일 전량 매도 종목)
func toHoldings(rows []HoldingOutput, acc config.KISAccount) []portfolio.Holding {
	holdings := make([]portfolio.Holding, 0, len(rows))
	for _, r := range rows {
		qty := parseNumber(r.HoldingQty)
		if qty <= 0 {
			continue
		}
		holdings = append(holdings, portfolio.Holding{
			StockCode:      strings.TrimSpace(r.Symbol),
			StockName:      strings.TrimSpace(r.SymbolName),
			Quantity:       qty,
			AvgPrice:       parseNumber(r.AvgPurchasePrice),
			CurrentPrice:   parseNumber(r.CurrentPrice),
			PurchaseAmount: parseNumber(r.PurchaseAmount),
			EvalAmount:     parseNumber(r.EvaluateAmount),
			EvalProfit:     parseNumber(r.EvaluateProfitLoss),
			EvalProfitRate: parseNumber(r.EvaluateProfitLossRate),
			AccountID:      acc.ID,
			AccountLabel:   acc.Label,
		})
	}
	return holdings
}

func toSummary(s SummaryOutput, acc config.KISAccount) portfolio.AccountSummary {
	purchase := parseNumber(s.TotalPurchaseAmount)
	profit := parseNumber(s.TotalEvaluateProfitLoss)
	return portfolio.AccountSummary{
		TotalDeposit:        parseNumber(s.DepositTotal),
		TotalEvaluation:     parseNumber(s.TotalEvaluation),
		TotalPurchaseAmount: purchase,
		TotalEvalProfit:     profit,
		TotalEvalProfitRate: profitRate(profit, purchase),
		D1Deposit:           parseNumber(s.D1Deposit),
		D2Deposit:           parseNumber(s.D2Deposit),
		TodayBuyAmount:      parseNumber(s.TodayBuyAmount),
		TodaySellAmount:     parseNumber(s.TodaySellAmount),
		AccountID:           acc.ID,
		AccountLabel:        acc.Label,
	}
}

// parseNumber KIS 숫자 문자열 파싱, 빈 값이나 잘못된 값은 0
func parseNumber(s string) float64 {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return d.InexactFloat64()
}

func profitRate(profit, purchase float64) float64 {
	if purchase <= 0 {
		return 0
	}
	return profit / purchase * 100
}
