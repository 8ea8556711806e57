package kis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

const (
	balancePath = "/uapi/domestic-stock/v1/trading/inquire-balance"

	trBalanceReal  = "TTTC8434R" // 실전투자
	trBalancePaper = "VTTC8434R" // 모의투자

	// maxBalancePages 연속조회 상한 (KIS가 tr_cont를 계속 M으로 주는 경우 대비)
	maxBalancePages = 50
)

// Credentials 계좌 하나의 인증 정보
type Credentials struct {
	AppKey      string
	AppSecret   string
	AccountNo   string // CANO (8자리)
	ProductCode string // ACNT_PRDT_CD
}

// RESTClient handles KIS REST API requests
type RESTClient struct {
	auth       *AuthClient
	baseURL    string
	isPaper    bool
	httpClient *http.Client
}

// NewRESTClient creates a new RESTClient
func NewRESTClient(auth *AuthClient, baseURL string, isPaper bool, timeout time.Duration) *RESTClient {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &RESTClient{
		auth:       auth,
		baseURL:    strings.TrimRight(baseURL, "/"),
		isPaper:    isPaper,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// BalanceResponse represents one page of the inquire-balance response
type BalanceResponse struct {
	RetCode      string          `json:"rt_cd"` // "0" = success
	MsgCode      string          `json:"msg_cd"`
	Msg1         string          `json:"msg1"`
	TrCont       string          `json:"tr_cont"` // 일부 응답은 body에도 포함
	CtxAreaFK100 string          `json:"ctx_area_fk100"`
	CtxAreaNK100 string          `json:"ctx_area_nk100"`
	Output1      []HoldingOutput `json:"output1"`
	Output2      []SummaryOutput `json:"output2"`
}

// HoldingOutput represents holding data
type HoldingOutput struct {
	Symbol                 string `json:"pdno"`          // 종목코드
	SymbolName             string `json:"prdt_name"`     // 종목명
	HoldingQty             string `json:"hldg_qty"`      // 보유수량
	AvgPurchasePrice       string `json:"pchs_avg_pric"` // 매입평균가격
	CurrentPrice           string `json:"prpr"`          // 현재가
	EvaluateAmount         string `json:"evlu_amt"`      // 평가금액
	EvaluateProfitLoss     string `json:"evlu_pfls_amt"` // 평가손익금액
	EvaluateProfitLossRate string `json:"evlu_pfls_rt"`  // 평가손익율
	PurchaseAmount         string `json:"pchs_amt"`      // 매입금액
}

// SummaryOutput represents the account summary (output2)
type SummaryOutput struct {
	DepositTotal            string `json:"dnca_tot_amt"`       // 예수금총금액
	TotalEvaluation         string `json:"tot_evlu_amt"`       // 총평가금액
	TotalPurchaseAmount     string `json:"pchs_amt_smtl_amt"`  // 매입금액합계금액
	TotalEvaluateProfitLoss string `json:"evlu_pfls_smtl_amt"` // 평가손익합계금액
	D1Deposit               string `json:"d1_auto_rdpt_amt"`   // D+1 자동상환금액
	D2Deposit               string `json:"d2_auto_rdpt_amt"`   // D+2 자동상환금액
	TodayBuyAmount          string `json:"thdt_buy_amt"`       // 금일매수금액
	TodaySellAmount         string `json:"thdt_sll_amt"`       // 금일매도금액
}

// BalancePages is the concatenated result of every inquire-balance page
type BalancePages struct {
	Holdings []HoldingOutput
	Summary  SummaryOutput // 첫 페이지 기준
	Pages    int
}

// InquireBalance fetches every page of the account's balance (주식잔고조회)
func (c *RESTClient) InquireBalance(ctx context.Context, creds Credentials) (*BalancePages, error) {
	result := &BalancePages{}
	var fk100, nk100 string

	for page := 0; page < maxBalancePages; page++ {
		body, trCont, err := c.balancePage(ctx, creds, fk100, nk100, page > 0)
		if err != nil {
			return nil, fmt.Errorf("inquire balance page %d: %w", page+1, err)
		}

		result.Holdings = append(result.Holdings, body.Output1...)
		if page == 0 && len(body.Output2) > 0 {
			result.Summary = body.Output2[0]
		}
		result.Pages++

		if trCont == "" {
			trCont = body.TrCont
		}
		if trCont != "M" && trCont != "F" {
			return result, nil
		}
		fk100, nk100 = body.CtxAreaFK100, body.CtxAreaNK100
	}

	log.Warn().
		Str("account", maskAccount(creds.AccountNo)).
		Int("pages", result.Pages).
		Msg("KIS balance paging limit reached")
	return result, nil
}

// balancePage runs one request, retrying once with a fresh token on 401
func (c *RESTClient) balancePage(ctx context.Context, creds Credentials, fk100, nk100 string, continued bool) (*BalanceResponse, string, error) {
	body, trCont, err := c.doBalance(ctx, creds, fk100, nk100, continued)
	if errors.Is(err, errTokenRejected) {
		c.auth.ClearToken(creds.AppKey)
		body, trCont, err = c.doBalance(ctx, creds, fk100, nk100, continued)
		if errors.Is(err, errTokenRejected) {
			return nil, "", ErrUnauthorized
		}
	}
	return body, trCont, err
}

var errTokenRejected = errors.New("token rejected")

func (c *RESTClient) doBalance(ctx context.Context, creds Credentials, fk100, nk100 string, continued bool) (*BalanceResponse, string, error) {
	token, err := c.auth.GetAccessToken(ctx, creds.AppKey, creds.AppSecret)
	if err != nil {
		return nil, "", fmt.Errorf("get access token: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+balancePath, nil)
	if err != nil {
		return nil, "", fmt.Errorf("create request: %w", err)
	}

	q := req.URL.Query()
	q.Add("CANO", creds.AccountNo)            // 계좌번호
	q.Add("ACNT_PRDT_CD", creds.ProductCode) // 계좌상품코드
	q.Add("AFHR_FLPR_YN", "N")               // 시간외단일가여부
	q.Add("OFL_YN", "")                      // 오프라인여부
	q.Add("INQR_DVSN", "02")                 // 조회구분 (02: 종목별)
	q.Add("UNPR_DVSN", "01")                 // 단가구분
	q.Add("FUND_STTL_ICLD_YN", "Y")          // 펀드결제분포함여부
	q.Add("FNCG_AMT_AUTO_RDPT_YN", "N")      // 융자금액자동상환여부
	q.Add("PRCS_DVSN", "00")                 // 처리구분 (00: 전일매매포함)
	q.Add("CTX_AREA_FK100", fk100)           // 연속조회검색조건100
	q.Add("CTX_AREA_NK100", nk100)           // 연속조회키100
	req.URL.RawQuery = q.Encode()

	trID := trBalanceReal
	if c.isPaper {
		trID = trBalancePaper
	}

	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("authorization", "Bearer "+token)
	req.Header.Set("appkey", creds.AppKey)
	req.Header.Set("appsecret", creds.AppSecret)
	req.Header.Set("tr_id", trID)
	req.Header.Set("custtype", "P")
	if continued {
		req.Header.Set("tr_cont", "N")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("execute request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		return nil, "", errTokenRejected
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("%w: status=%d body=%s", ErrAPI, resp.StatusCode, truncate(respBody, 200))
	}

	var balanceResp BalanceResponse
	if err := json.Unmarshal(respBody, &balanceResp); err != nil {
		return nil, "", fmt.Errorf("unmarshal response: %w", err)
	}
	if balanceResp.RetCode != "0" {
		return nil, "", fmt.Errorf("%w: code=%s msg=%s", ErrAPI, balanceResp.MsgCode, balanceResp.Msg1)
	}

	return &balanceResp, strings.TrimSpace(resp.Header.Get("tr_cont")), nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}

func maskAccount(no string) string {
	if len(no) <= 4 {
		return "****"
	}
	return no[:4] + "****"
}
