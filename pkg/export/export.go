package export

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go-resume-matcher/pkg/atsscore"

	"github.com/xuri/excelize/v2"
)

const (
	FormatXLSX = "xlsx"
	FormatCSV  = "csv"

	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	ContentTypeCSV  = "text/csv; charset=utf-8"
)

var ErrUnsupportedFormat = errors.New("unsupported export format")

// Report is one analysis ready for download
type Report struct {
	ID           string
	CreatedAt    time.Time
	OverallScore int
	Keywords     []string
	Sections     []atsscore.SectionAnalysis
}

var columns = []string{"SECTION", "ATS SCORE", "MATCHES", "MISSING", "SUGGESTIONS"}

// Render encodes r as format ("" means xlsx). It returns the bytes, the content type and a filename.
func Render(format string, r Report) ([]byte, string, string, error) {
	stamp := r.CreatedAt.UTC().Format("20060102_150405")
	switch strings.ToLower(format) {
	case FormatXLSX, "":
		data, err := XLSX(r)
		return data, ContentTypeXLSX, fmt.Sprintf("resume_analysis_%s.xlsx", stamp), err
	case FormatCSV:
		data, err := CSV(r)
		return data, ContentTypeCSV, fmt.Sprintf("resume_analysis_%s.csv", stamp), err
	default:
		return nil, "", "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

func sectionRow(s atsscore.SectionAnalysis) []string {
	return []string{
		strings.ToUpper(s.Section.String()),
		strconv.Itoa(s.ATSScore),
		strings.Join(s.Matches, ", "),
		strings.Join(s.Missing, ", "),
		strings.Join(s.Suggestions, "\n"),
	}
}

// XLSX writes an "Analysis" sheet with one row per section and a "Keywords" sheet
func XLSX(r Report) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Analysis"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}

	for i, col := range columns {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		f.SetCellValue(sheet, cell, col)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#1E3A5F"}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	endCell, _ := excelize.CoordinatesToCellName(len(columns), 1)
	f.SetCellStyle(sheet, "A1", endCell, headerStyle)

	wrapStyle, _ := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})

	for rowIdx, s := range r.Sections {
		row := sectionRow(s)
		for colIdx, value := range row {
			cell, _ := excelize.CoordinatesToCellName(colIdx+1, rowIdx+2)
			if colIdx == 1 {
				f.SetCellValue(sheet, cell, s.ATSScore)
				continue
			}
			f.SetCellValue(sheet, cell, value)
		}
	}
	if len(r.Sections) > 0 {
		last, _ := excelize.CoordinatesToCellName(len(columns), len(r.Sections)+1)
		f.SetCellStyle(sheet, "A2", last, wrapStyle)
	}

	totalRow := len(r.Sections) + 2
	f.SetCellValue(sheet, fmt.Sprintf("A%d", totalRow), "OVERALL")
	f.SetCellValue(sheet, fmt.Sprintf("B%d", totalRow), r.OverallScore)

	f.SetColWidth(sheet, "A", "B", 14)
	f.SetColWidth(sheet, "C", "E", 45)

	const kwSheet = "Keywords"
	if _, err := f.NewSheet(kwSheet); err != nil {
		return nil, err
	}
	f.SetCellValue(kwSheet, "A1", "RANK")
	f.SetCellValue(kwSheet, "B1", "KEYWORD")
	f.SetCellStyle(kwSheet, "A1", "B1", headerStyle)
	for i, kw := range r.Keywords {
		f.SetCellValue(kwSheet, fmt.Sprintf("A%d", i+2), i+1)
		f.SetCellValue(kwSheet, fmt.Sprintf("B%d", i+2), kw)
	}
	f.SetColWidth(kwSheet, "B", "B", 30)

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("failed to write Excel file: %w", err)
	}
	return buf.Bytes(), nil
}

// CSV writes the section rows followed by an OVERALL row
func CSV(r Report) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	_ = w.Write(columns)
	for _, s := range r.Sections {
		_ = w.Write(sectionRow(s))
	}
	_ = w.Write([]string{"OVERALL", strconv.Itoa(r.OverallScore), "", "", ""})

	w.Flush()
	if err := w.Error(); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}
	return buf.Bytes(), nil
}
