package cryptopanic

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"CoinPulse/internal/domain/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const postsBody = `{"results":[
 {"id":101,"title":"Bitcoin rally continues","url":"https://x/1","domain":"x.io","published_at":"2024-10-10T10:10:10Z",
  "source":{"title":"CoinDesk"},"currencies":[{"code":"BTC"}],
  "votes":{"positive":3,"negative":1,"important":2,"liked":1,"disliked":0,"lol":0,"toxic":0,"saved":1,"comments":4},
  "metadata":{"description":"Prices rose sharply.","image":"https://x/1.png"}},
 {"id":102,"title":"   ","url":"https://x/2"},
 {"id":103,"title":"Ether dips","url":"https://x/3","domain":"y.io","published_at":"bad"},
 {"id":104,"title":"Third","url":"https://x/4"}
]}`

func TestPostsHotForCurrency(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "/posts/", r.URL.Path)
		assert.Equal(t, "token", q.Get("auth_token"))
		assert.Equal(t, "BTC", q.Get("currencies"))
		assert.Equal(t, "hot", q.Get("filter"))
		_, _ = w.Write([]byte(postsBody))
	}))
	defer srv.Close()

	posts, err := New(srv.URL, "token", time.Second, nil).Posts(context.Background(), "bitcoin", 2)
	require.NoError(t, err)
	require.Len(t, posts, 2)

	first := posts[0]
	assert.Equal(t, "101", first.ID)
	assert.Equal(t, "CoinDesk", first.Source)
	assert.Equal(t, "Prices rose sharply.", first.Description)
	assert.Equal(t, []string{"BTC"}, first.Currencies)
	require.NotNil(t, first.Votes)
	assert.Equal(t, 3, first.Votes.Positive)
	assert.Equal(t, 2024, first.PublishedAt.Year())

	second := posts[1]
	assert.Equal(t, "y.io", second.Source)
	assert.True(t, second.PublishedAt.IsZero())
	assert.Nil(t, second.Votes)
}

func TestPostsLatestNews(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("filter"))
		_, _ = w.Write([]byte(postsBody))
	}))
	defer srv.Close()

	posts, err := New(srv.URL, "token", time.Second, nil).Posts(context.Background(), "", 0)
	require.NoError(t, err)
	assert.Len(t, posts, 3)
}

func TestPostsWithoutResultsIsMalformed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"detail":"quota"}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL, "token", time.Second, nil).Posts(context.Background(), "", 10)
	require.ErrorIs(t, err, models.ErrMalformedPayload)
}

func TestCurrencyCode(t *testing.T) {
	assert.Equal(t, "BTC", CurrencyCode("Bitcoin"))
	assert.Equal(t, "PEPE", CurrencyCode("pepe"))
}
