package service

import (
	"bytes"
	"fmt"
	"strings"

	"catering/models"

	"github.com/xuri/excelize/v2"
)

// XLSXContentType response type for workbooks
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// OrderSelection a guest's pick from a shared menu
type OrderSelection struct {
	ContactName string
	GuestCount  int
	Notes       string
	Items       []models.MenuItem
}

type sheetStyles struct {
	header, data, summary int
}

func newSheetStyles(f *excelize.File) (sheetStyles, error) {
	border := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
	}
	var s sheetStyles
	var err error
	if s.header, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 12, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"EA580C"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	}); err != nil {
		return s, err
	}
	if s.data, err = f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{Vertical: "center", WrapText: true},
		Border:    border,
	}); err != nil {
		return s, err
	}
	s.summary, err = f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"FED7AA"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border:    border,
	})
	return s, err
}

func writeRow(f *excelize.File, sheet string, row int, values []interface{}, style int) error {
	for i, v := range values {
		cell, err := excelize.CoordinatesToCellName(i+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return err
		}
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	return f.SetCellStyle(sheet, first, last, style)
}

// BuildMenuWorkbook renders a menu tree as one row per item, grouped by category
func BuildMenuWorkbook(menu *models.Menu) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Menu"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	widths := []float64{22, 22, 28, 40, 40, 30, 8}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		f.SetColWidth(sheet, col, col, w)
	}

	headers := []interface{}{"Category", "Subcategory", "Item", "Description", "Ingredients", "Tags", "Active"}
	if err := writeRow(f, sheet, 1, headers, styles.header); err != nil {
		return nil, err
	}

	row := 2
	count := 0
	emit := func(category, subcategory string, item models.MenuItem) error {
		values := []interface{}{category, subcategory, item.Name, deref(item.Description), deref(item.Ingredients), tagNames(item.Tags), yesNo(item.IsActive)}
		if err := writeRow(f, sheet, row, values, styles.data); err != nil {
			return err
		}
		row++
		count++
		return nil
	}

	for _, cat := range menu.Categories {
		for _, item := range cat.MenuItems {
			if err := emit(cat.Name, "", item); err != nil {
				return nil, err
			}
		}
		for _, sub := range cat.ChildCategories {
			for _, item := range sub.MenuItems {
				if err := emit(cat.Name, sub.Name, item); err != nil {
					return nil, err
				}
			}
		}
	}

	summary := []interface{}{menu.Name, "", fmt.Sprintf("%d items", count), "", "", "", ""}
	if err := writeRow(f, sheet, row, summary, styles.summary); err != nil {
		return nil, err
	}
	f.MergeCell(sheet, fmt.Sprintf("A%d", row), fmt.Sprintf("B%d", row))

	return f.WriteToBuffer()
}

// BuildOrderWorkbook renders a guest's selection from a shared menu
func BuildOrderWorkbook(menuName string, order OrderSelection) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	sheet := "Order"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, err
	}
	styles, err := newSheetStyles(f)
	if err != nil {
		return nil, err
	}

	f.SetColWidth(sheet, "A", "A", 6)
	f.SetColWidth(sheet, "B", "B", 24)
	f.SetColWidth(sheet, "C", "C", 30)
	f.SetColWidth(sheet, "D", "D", 30)

	details := [][]interface{}{
		{"Menu", menuName},
		{"Contact", order.ContactName},
		{"Guests", order.GuestCount},
		{"Notes", order.Notes},
	}
	for i, d := range details {
		if err := writeRow(f, sheet, i+1, d, styles.data); err != nil {
			return nil, err
		}
	}

	headerRow := len(details) + 2
	if err := writeRow(f, sheet, headerRow, []interface{}{"#", "Category", "Item", "Tags"}, styles.header); err != nil {
		return nil, err
	}
	for i, item := range order.Items {
		category := ""
		if item.Category != nil {
			category = item.Category.Name
		}
		values := []interface{}{i + 1, category, item.Name, tagNames(item.Tags)}
		if err := writeRow(f, sheet, headerRow+1+i, values, styles.data); err != nil {
			return nil, err
		}
	}

	summaryRow := headerRow + 1 + len(order.Items)
	if err := writeRow(f, sheet, summaryRow, []interface{}{"", "Total", fmt.Sprintf("%d items", len(order.Items)), ""}, styles.summary); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func tagNames(tags []models.Tag) string {
	names := make([]string, 0, len(tags))
	for _, t := range tags {
		names = append(names, t.Name)
	}
	return strings.Join(names, ", ")
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
