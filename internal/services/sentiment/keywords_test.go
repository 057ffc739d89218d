package sentiment

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCryptoKeywordsFrequencyOrder(t *testing.T) {
	got := CryptoKeywords("Bitcoin bitcoin BITCOIN mining mining")
	assert.Equal(t, []string{"bitcoin", "mining"}, got)
}

func TestCryptoKeywordsTiesKeepFirstSeen(t *testing.T) {
	got := CryptoKeywords("wallet mining wallet mining defi")
	assert.Equal(t, []string{"wallet", "mining", "defi"}, got)
}

func TestCryptoKeywordsDropsShortTerms(t *testing.T) {
	// btc and eth are domain terms but not longer than three characters
	got := CryptoKeywords("BTC ETH btc eth blockchain")
	assert.Equal(t, []string{"blockchain"}, got)
}

func TestCryptoKeywordsLimit(t *testing.T) {
	got := CryptoKeywords("bitcoin ethereum crypto blockchain token altcoin defi mining")
	assert.Len(t, got, 5)
	assert.Equal(t, "bitcoin", got[0])
}

func TestCryptoKeywordsEmpty(t *testing.T) {
	assert.Empty(t, CryptoKeywords(""))
	assert.NotNil(t, CryptoKeywords("nothing relevant"))
}

func TestCommonKeywords(t *testing.T) {
	got := CommonKeywords("The rally, the rally and the surge!")
	assert.Equal(t, []string{"rally", "surge"}, got)
}

func TestCommonKeywordsKeepsUnicodeLetters(t *testing.T) {
	got := CommonKeywords("Bitcoin'de güçlü yükseliş")
	assert.Equal(t, []string{"bitcoinde", "güçlü", "yükseliş"}, got)
}
