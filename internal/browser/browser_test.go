package browser

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()

	assert.True(t, opts.Headless)
	assert.Equal(t, 60*time.Second, opts.Timeout)
	assert.Equal(t, 1920, opts.ViewportWidth)
	assert.Equal(t, 1080, opts.ViewportHeight)
	assert.Equal(t, "pt-BR", opts.Locale)
	assert.Equal(t, "pt-BR,pt;q=0.9,en;q=0.8", opts.AcceptLanguage)
	assert.Equal(t, []string{"mtop.aliexpress", "pdp"}, opts.Capture.URLContains)
}

func TestCaptureFilter_MatchURL(t *testing.T) {
	f := DefaultCaptureFilter()

	assert.True(t, f.matchURL("https://acs.aliexpress.com/h5/mtop.aliexpress.pdp.pc.query/1.0/?jsv=2.5.1"))
	assert.False(t, f.matchURL("https://acs.aliexpress.com/h5/mtop.aliexpress.review.list/1.0/"))
	assert.False(t, f.matchURL("https://pt.aliexpress.com/item/1005001.html"))
}

func TestCapture_Record(t *testing.T) {
	c := NewCapture(DefaultCaptureFilter(), nil)

	assert.False(t, c.Record("u1", "short"))
	assert.True(t, c.Record("u2", `cb({"data":{"ret":"x"}})`+strings.Repeat(" ", 1000)))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	got, err := c.Responses(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	require.Len(t, got, 1)
	assert.Equal(t, "u2", got[0].URL)
}

func TestCapture_ReadyReleasesWaiters(t *testing.T) {
	c := NewCapture(DefaultCaptureFilter(), nil)
	body := `mtopjsonp1({"data":{"result":{}}})` + strings.Repeat(" ", 1000)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		time.Sleep(10 * time.Millisecond)
		c.Record("u1", body)
		c.Record("u2", body)
	}()

	got, err := c.Responses(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, got)
	wg.Wait()

	got, err = c.Responses(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestHasResultObject(t *testing.T) {
	tests := []struct {
		name string
		body string
		want bool
	}{
		{"jsonp result object", `mtopjsonp1({"data":{"result":{"PRICE":{}}}})`, true},
		{"plain json result object", `{"data":{"result":{}}}`, true},
		{"result nested elsewhere", `mtopjsonp1({"data":{"module":{"result":[]}}})`, false},
		{"result is an array", `{"data":{"result":[]}}`, false},
		{"result only in a string", `{"data":{"msg":"\"result\""}}`, false},
		{"not json", `<html>"result"</html>`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, HasResultObject(tt.body))
		})
	}
}

func TestCapture_WaitsForResultObject(t *testing.T) {
	c := NewCapture(DefaultCaptureFilter(), nil)
	pad := strings.Repeat(" ", 1000)
	decoy := `mtopjsonp1({"data":{"module":{"result":[]}}})` + pad
	product := `mtopjsonp2({"data":{"result":{"PRICE":{}}}})` + pad

	require.True(t, c.Record("u1", decoy))

	start := time.Now()
	go func() {
		time.Sleep(50 * time.Millisecond)
		c.Record("u2", product)
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	got, err := c.Responses(ctx)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
	require.Len(t, got, 2)
	assert.Equal(t, "u1", got[0].URL)
	assert.Equal(t, "u2", got[1].URL)
}

func TestCapture_NilReadyAcceptsAnyKeptBody(t *testing.T) {
	c := NewCapture(CaptureFilter{MinBodySize: 1}, nil)
	require.True(t, c.Record("u1", "not json at all"))

	got, err := c.Responses(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestIsBlocked(t *testing.T) {
	assert.True(t, isBlocked("https://pt.aliexpress.com/item/1.html/_____tmd_____/punish?x5secdata=abc"))
	assert.True(t, isBlocked(`<div id="nc_1_n1z" class="nc_iconfont btn_slide"></div>`))
	assert.False(t, isBlocked(`<h1 data-pl="product-title">Caneca</h1>`))
}
