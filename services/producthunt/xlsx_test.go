package producthunt

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"tweetpipe/lib/cachestore"
	"tweetpipe/lib/telemetry"
)

func writeProductCacheFile(t *testing.T, store cachestore.Store, name, contents string) {
	t.Helper()
	dir := store.Dir(ProductCacheDir)
	require.NoError(t, os.MkdirAll(dir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(contents), 0644))
}

func TestTweetsWorkbook(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/producthunt")
	defer cleanup()

	store := cachestore.New(t.TempDir())
	writeProductCacheFile(t, store, "2026-08-28_cool_app_details.md", "# Product Details\nthe product page")
	generator := &stubGenerator{responses: []string{
		"```json\n" + `{"tweets": [
			{"tweet_number": 1, "content": "Meet Cool App"},
			{"tweet_number": 2, "content": "It does things"}
		]}` + "\n```",
	}}
	service := NewService(store, Options{Generator: generator})

	require.NoError(t, service.Tweets(context.Background(), testDate))
	require.Equal(t, 1, generator.calls)

	path := filepath.Join(store.Dir(ProductCacheDir), "2026-08-28_tweet_threads.xlsx")
	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer workbook.Close()

	require.Equal(t, []string{"cool_app"}, workbook.GetSheetList())

	rows, err := workbook.GetRows("cool_app")
	require.NoError(t, err)
	require.Equal(t, [][]string{
		{"Tweet Number", "Content"},
		{"1", "Meet Cool App"},
		{"2", "It does things"},
	}, rows)
}

func TestTweetsSkipsEmptyThreads(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/producthunt")
	defer cleanup()

	store := cachestore.New(t.TempDir())
	writeProductCacheFile(t, store, "2026-08-28_cool_app_details.md", "# Product Details\npage")
	generator := &stubGenerator{responses: []string{`{"tweets": []}`}}
	service := NewService(store, Options{Generator: generator})

	require.NoError(t, service.Tweets(context.Background(), testDate))

	// nothing generated, no workbook written
	path := filepath.Join(store.Dir(ProductCacheDir), "2026-08-28_tweet_threads.xlsx")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestTweetsIgnoresOtherDates(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/producthunt")
	defer cleanup()

	store := cachestore.New(t.TempDir())
	writeProductCacheFile(t, store, "2026-08-27_old_app_details.md", "# Product Details\nold page")
	generator := &stubGenerator{}
	service := NewService(store, Options{Generator: generator})

	require.NoError(t, service.Tweets(context.Background(), testDate))
	require.Equal(t, 0, generator.calls)
}

func TestLeadsWorkbook(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/producthunt")
	defer cleanup()

	store := cachestore.New(t.TempDir())
	writeProductCacheFile(t, store, "2026-08-28_cool_app_makers.md", "# Team/Makers\nthe makers page")
	generator := &stubGenerator{responses: []string{`{
		"product_name": "Cool App",
		"product_url": "https://www.producthunt.com/posts/cool-app",
		"makers": [
			{
				"name": "Sam Doe",
				"role": "Founder",
				"description": "Builds developer tools and writes at length about build systems, compilers and release engineering.",
				"followers": 1200,
				"links": [{"name": "Twitter", "url": "https://x.com/sam"}]
			}
		]
	}`}}
	service := NewService(store, Options{Generator: generator})

	require.NoError(t, service.Leads(context.Background(), testDate))

	path := filepath.Join(store.Dir(ProductCacheDir), "2026-08-28_product_makers.xlsx")
	workbook, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer workbook.Close()

	require.Equal(t, []string{"cool_app"}, workbook.GetSheetList())

	// merged header rows carry the product identity
	name, err := workbook.GetCellValue("cool_app", "A1")
	require.NoError(t, err)
	require.Equal(t, "Name: cool_app", name)
	url, err := workbook.GetCellValue("cool_app", "A2")
	require.NoError(t, err)
	require.Equal(t, "URL: https://www.producthunt.com/posts/cool-app", url)

	merged, err := workbook.GetMergeCells("cool_app")
	require.NoError(t, err)
	require.Len(t, merged, 2)

	// row 3 stays blank, row 4 is the table header
	spacer, err := workbook.GetCellValue("cool_app", "A3")
	require.NoError(t, err)
	require.Equal(t, "", spacer)
	header, err := workbook.GetCellValue("cool_app", "A4")
	require.NoError(t, err)
	require.Equal(t, "Name", header)

	maker, err := workbook.GetCellValue("cool_app", "A5")
	require.NoError(t, err)
	require.Equal(t, "Sam Doe", maker)
	links, err := workbook.GetCellValue("cool_app", "E5")
	require.NoError(t, err)
	require.Equal(t, "Twitter (https://x.com/sam)", links)

	// the long description column is capped at 50
	width, err := workbook.GetColWidth("cool_app", "C")
	require.NoError(t, err)
	require.Equal(t, float64(50), width)
}

func TestLeadsSkipsProductsWithoutMakers(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:services/producthunt")
	defer cleanup()

	store := cachestore.New(t.TempDir())
	writeProductCacheFile(t, store, "2026-08-28_cool_app_makers.md", "# Team/Makers\npage")
	generator := &stubGenerator{responses: []string{`{"makers": []}`}}
	service := NewService(store, Options{Generator: generator})

	require.NoError(t, service.Leads(context.Background(), testDate))

	path := filepath.Join(store.Dir(ProductCacheDir), "2026-08-28_product_makers.xlsx")
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}
