package producthunt

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.opentelemetry.io/otel/codes"
	"tweetpipe/lib/llm"
)

func buildMakersPrompt(markdown string) string {
	return fmt.Sprintf(`You are an expert at analyzing product maker profiles and extracting structured information. The content below is divided into two sections: Product Details and Team/Makers.

For each maker, extract:
- name
- role (if mentioned)
- description/bio
- number of followers (if available)
- list of links (each with name and url)

Return ONLY a JSON object of this exact shape, with null for anything missing:

{
    "product_name": "...",
    "product_url": "...",
    "makers": [
        {"name": "...", "role": "...", "description": "...", "followers": 0, "links": [{"name": "...", "url": "..."}]}
    ]
}

Do not make up any data. Do not include any explanatory text, code blocks or markdown formatting.

The markdown content is:
%s`, markdown)
}

func parseMakers(response string) (ProductMakers, error) {
	var makers ProductMakers
	err := json.Unmarshal([]byte(llm.StripFences(response)), &makers)
	if err != nil {
		return ProductMakers{}, fmt.Errorf("%w: %s", ErrParse, err)
	}
	return makers, nil
}

// Leads extracts maker contact information from every makers page scraped
// on the given day and collects it into one workbook, a sheet per
// product. Each sheet opens with two merged header rows (product name and
// URL), a spacer row, then the maker table.
func (s Service) Leads(ctx context.Context, date time.Time) error {
	ctx, span := tracer.Start(ctx, "Leads")
	defer span.End()

	cacheDir := s.cache.Dir(ProductCacheDir)
	prefix := date.Format(datePrefix)
	files, err := datedFiles(cacheDir, prefix, "_makers.md")
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to list product cache")
		return err
	}
	if len(files) == 0 {
		slog.Warn("no makers files for date", "date", prefix)
		return nil
	}

	workbook := excelize.NewFile()
	defer workbook.Close()
	written := 0

	for _, file := range files {
		product := strings.TrimSuffix(strings.TrimPrefix(file, prefix+"_"), "_makers.md")
		slog.Info("extracting makers", "product", product)

		contents, err := os.ReadFile(filepath.Join(cacheDir, file))
		if err != nil {
			return err
		}
		response, err := s.generator.Generate(ctx, buildMakersPrompt(string(contents)))
		if err != nil {
			return fmt.Errorf("maker extraction failed for %s: %w", product, err)
		}
		makers, err := parseMakers(response)
		if err != nil {
			return fmt.Errorf("bad makers response for %s: %w", product, err)
		}
		if len(makers.Makers) == 0 {
			slog.Warn("no makers found", "product", product)
			continue
		}

		sheet := sanitizeSheetName(product)
		if err := writeMakersSheet(workbook, sheet, product, makers); err != nil {
			return err
		}
		written++
	}

	if written == 0 {
		slog.Warn("no makers data was processed", "date", prefix)
		return nil
	}

	if err := workbook.DeleteSheet("Sheet1"); err != nil {
		return err
	}
	output := filepath.Join(cacheDir, prefix+"_product_makers.xlsx")
	if err := workbook.SaveAs(output); err != nil {
		return err
	}
	slog.Info("saved makers workbook", "path", output, "products", written)
	return nil
}

func writeMakersSheet(workbook *excelize.File, sheet, product string, makers ProductMakers) error {
	if _, err := workbook.NewSheet(sheet); err != nil {
		return err
	}

	// two merged header rows, then a spacer before the table
	if err := workbook.SetCellValue(sheet, "A1", "Name: "+product); err != nil {
		return err
	}
	if err := workbook.MergeCell(sheet, "A1", "B1"); err != nil {
		return err
	}
	if err := workbook.SetCellValue(sheet, "A2", "URL: "+makers.ProductUrl); err != nil {
		return err
	}
	if err := workbook.MergeCell(sheet, "A2", "B2"); err != nil {
		return err
	}

	sizer := newColumnSizer(50)
	header := []any{"Name", "Role", "Description", "Followers", "Links"}
	sizer.observe(header)
	if err := workbook.SetSheetRow(sheet, "A4", &header); err != nil {
		return err
	}
	for i, maker := range makers.Makers {
		row := []any{maker.Name, maker.Role, maker.Description, maker.Followers, maker.FlatLinks()}
		sizer.observe(row)
		cell, err := excelize.CoordinatesToCellName(1, i+5)
		if err != nil {
			return err
		}
		if err := workbook.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return sizer.apply(workbook, sheet)
}
