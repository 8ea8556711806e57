package kis

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkjh2020/investment-manager/internal/domain/portfolio"
	"github.com/nkjh2020/investment-manager/internal/pkg/config"
)

// fakeKIS serves /oauth2/tokenP and a two-page inquire-balance
type fakeKIS struct {
	tokenCalls   atomic.Int32
	balanceCalls atomic.Int32
	rejectFirst  atomic.Bool // 첫 잔고 요청에 401
	failAccount  string
}

func (f *fakeKIS) handler(t *testing.T) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/oauth2/tokenP", func(w http.ResponseWriter, r *http.Request) {
		n := f.tokenCalls.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": "token-" + string(rune('0'+n)),
			"token_type":   "Bearer",
			"expires_in":   86400,
		})
	})

	mux.HandleFunc(balancePath, func(w http.ResponseWriter, r *http.Request) {
		f.balanceCalls.Add(1)
		if f.rejectFirst.CompareAndSwap(true, false) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}

		q := r.URL.Query()
		assert.Equal(t, "02", q.Get("INQR_DVSN"))
		assert.Equal(t, "Y", q.Get("FUND_STTL_ICLD_YN"))
		assert.Equal(t, "TTTC8434R", r.Header.Get("tr_id"))

		if q.Get("CANO") == f.failAccount {
			_ = json.NewEncoder(w).Encode(map[string]any{"rt_cd": "1", "msg_cd": "EGW00001", "msg1": "조회 실패"})
			return
		}

		summary := []map[string]string{{
			"dnca_tot_amt":       "1000000",
			"tot_evlu_amt":       "3000000",
			"pchs_amt_smtl_amt":  "1800000",
			"evlu_pfls_smtl_amt": "200000",
			"thdt_buy_amt":       "50000",
		}}

		if q.Get("CTX_AREA_NK100") == "" {
			assert.Empty(t, r.Header.Get("tr_cont"))
			w.Header().Set("tr_cont", "M")
			_ = json.NewEncoder(w).Encode(map[string]any{
				"rt_cd":          "0",
				"ctx_area_fk100": "FK",
				"ctx_area_nk100": "NK",
				"output1": []map[string]string{
					{"pdno": "005930", "prdt_name": "삼성전자", "hldg_qty": "10", "pchs_amt": "700000", "evlu_amt": "800000", "evlu_pfls_amt": "100000", "evlu_pfls_rt": "14.28"},
					{"pdno": "000660", "prdt_name": "SK하이닉스", "hldg_qty": "0", "evlu_amt": "0"},
				},
				"output2": summary,
			})
			return
		}

		assert.Equal(t, "FK", q.Get("CTX_AREA_FK100"))
		assert.Equal(t, "N", r.Header.Get("tr_cont"))
		w.Header().Set("tr_cont", "D")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"rt_cd": "0",
			"output1": []map[string]string{
				{"pdno": "069500", "prdt_name": "KODEX 200", "hldg_qty": "20", "pchs_amt": "1100000", "evlu_amt": "1200000", "evlu_pfls_amt": "100000"},
			},
			"output2": summary,
		})
	})

	return mux
}

func newProvider(t *testing.T, f *fakeKIS, accounts ...config.KISAccount) *BalanceProvider {
	srv := httptest.NewServer(f.handler(t))
	t.Cleanup(srv.Close)

	auth := NewAuthClient(srv.URL, time.Second)
	rest := NewRESTClient(auth, srv.URL, false, time.Second)
	return NewBalanceProvider(rest, StaticAccounts(accounts))
}

func account(id, no string) config.KISAccount {
	return config.KISAccount{ID: id, Label: id, AppKey: "PSkey", AppSecret: "secret", AccountNo: no, ProductCode: "01"}
}

func TestBalanceProvider_Paging(t *testing.T) {
	f := &fakeKIS{}
	p := newProvider(t, f, account("isa", "11111111"))

	bal, err := p.GetBalance(context.Background(), "u1")
	require.NoError(t, err)

	require.Len(t, bal.Holdings, 2, "zero-quantity rows are dropped")
	assert.Equal(t, "005930", bal.Holdings[0].StockCode)
	assert.Equal(t, "069500", bal.Holdings[1].StockCode)
	assert.Equal(t, "isa", bal.Holdings[0].AccountID)
	assert.Equal(t, 800000.0, bal.Holdings[0].EvalAmount)

	assert.Equal(t, int32(2), f.balanceCalls.Load())
	assert.Equal(t, int32(1), f.tokenCalls.Load())

	assert.Equal(t, 1000000.0, bal.Summary.TotalDeposit)
	assert.Equal(t, portfolio.MergedAccountID, bal.Summary.AccountID)
	assert.InDelta(t, 11.11, bal.Summary.TotalEvalProfitRate, 0.01)
}

func TestBalanceProvider_MultiAccount(t *testing.T) {
	t.Run("one failing account is isolated", func(t *testing.T) {
		f := &fakeKIS{failAccount: "22222222"}
		p := newProvider(t, f, account("isa", "11111111"), account("pension", "22222222"))

		bal, err := p.GetBalance(context.Background(), "u1")
		require.NoError(t, err)

		require.Len(t, bal.Accounts, 2)
		assert.Empty(t, bal.Accounts[0].Error)
		assert.NotEmpty(t, bal.Accounts[1].Error)
		assert.Empty(t, bal.Accounts[1].Holdings)
		assert.Len(t, bal.Holdings, 2)

		// 같은 appKey는 토큰 공유
		assert.Equal(t, int32(1), f.tokenCalls.Load())
	})

	t.Run("all accounts failing", func(t *testing.T) {
		f := &fakeKIS{failAccount: "33333333"}
		p := newProvider(t, f, account("isa", "33333333"))

		_, err := p.GetBalance(context.Background(), "u1")
		assert.ErrorIs(t, err, portfolio.ErrHoldingsUnavailable)
	})

	t.Run("no accounts", func(t *testing.T) {
		p := newProvider(t, &fakeKIS{})

		_, err := p.GetBalance(context.Background(), "u1")
		assert.ErrorIs(t, err, portfolio.ErrHoldingsUnavailable)
		assert.ErrorIs(t, err, portfolio.ErrNoAccounts)
	})
}

func TestRESTClient_RetriesOnceOn401(t *testing.T) {
	f := &fakeKIS{}
	f.rejectFirst.Store(true)
	p := newProvider(t, f, account("isa", "11111111"))

	bal, err := p.GetBalance(context.Background(), "u1")
	require.NoError(t, err)
	assert.Len(t, bal.Holdings, 2)
	assert.Equal(t, int32(2), f.tokenCalls.Load(), "token cleared and reissued")
}

func TestAuthClient_RefreshBeforeExpiry(t *testing.T) {
	f := &fakeKIS{}
	srv := httptest.NewServer(f.handler(t))
	defer srv.Close()

	now := time.Date(2026, 1, 1, 9, 0, 0, 0, time.UTC)
	auth := NewAuthClient(srv.URL, time.Second).WithClock(func() time.Time { return now })
	ctx := context.Background()

	first, err := auth.GetAccessToken(ctx, "k", "s")
	require.NoError(t, err)

	now = now.Add(22 * time.Hour)
	again, err := auth.GetAccessToken(ctx, "k", "s")
	require.NoError(t, err)
	assert.Equal(t, first, again)

	now = now.Add(time.Hour + time.Second) // 만료 1시간 전 경과
	renewed, err := auth.GetAccessToken(ctx, "k", "s")
	require.NoError(t, err)
	assert.NotEqual(t, first, renewed)
	assert.Equal(t, int32(2), f.tokenCalls.Load())
}

func TestMergeSummaries(t *testing.T) {
	merged := MergeSummaries([]portfolio.AccountSummary{
		{TotalPurchaseAmount: 1000, TotalEvalProfit: 100, TotalEvalProfitRate: 10, TotalDeposit: 5},
		{TotalPurchaseAmount: 3000, TotalEvalProfit: -100, TotalEvalProfitRate: -3.3, TotalDeposit: 7},
	})

	assert.Equal(t, 12.0, merged.TotalDeposit)
	assert.Equal(t, 0.0, merged.TotalEvalProfitRate, "recomputed from sums, not averaged")
	assert.Equal(t, portfolio.MergedAccountLabel, merged.AccountLabel)
}
