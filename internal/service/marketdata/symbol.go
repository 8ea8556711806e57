package marketdata

// 코스닥 종목 (Yahoo .KQ 접미사), 나머지는 모두 코스피 .KS
var kosdaqCodes = map[string]struct{}{
	"247540": {}, // 에코프로비엠
	"086520": {}, // 에코프로
	"035900": {}, // JYP Ent.
	"041510": {}, // SM엔터테인먼트
	"122870": {}, // 와이지엔터테인먼트
	"293490": {}, // 카카오게임즈
	"058470": {}, // 리노공업
	"039030": {}, // 이오테크닉스
	"028300": {}, // HLB
}

// ToProviderSymbol maps a 6-digit instrument code to its Yahoo symbol
func ToProviderSymbol(code string) string {
	if _, ok := kosdaqCodes[code]; ok {
		return code + ".KQ"
	}
	return code + ".KS"
}
