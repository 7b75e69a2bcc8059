// Package importer 读取申込数据源（xlsx / csv）为 model.Table。
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"

	"leadreport/internal/model"
	"leadreport/internal/parser"
)

// Loader 数据源加载器
type Loader struct {
	recognizer *parser.SheetRecognizer
}

// NewLoader 创建加载器；rules 用于在未指定 sheet 时识别申込数据 sheet
func NewLoader(rules []model.ColumnRule) *Loader {
	return &Loader{recognizer: parser.NewSheetRecognizer(rules)}
}

// IsWorkbook 按扩展名判断是否为 Excel 工作簿
func IsWorkbook(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return true
	}
	return false
}

// Load 从文件读取数据表
func (l *Loader) Load(path, sheet string) (*model.Table, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, path)
		}
		return nil, fmt.Errorf("stat source: %w", err)
	}

	switch {
	case IsWorkbook(path):
		wb, err := excelize.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("打开工作簿失败: %w", err)
		}
		defer wb.Close()
		return l.LoadWorkbook(wb, sheet)
	case strings.EqualFold(filepath.Ext(path), ".csv"):
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open csv: %w", err)
		}
		defer f.Close()
		return LoadCSV(f, strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// LoadReader 从上传内容读取；name 仅用于判断格式
func (l *Loader) LoadReader(r io.Reader, name, sheet string) (*model.Table, error) {
	switch {
	case IsWorkbook(name):
		wb, err := excelize.OpenReader(r)
		if err != nil {
			return nil, fmt.Errorf("打开工作簿失败: %w", err)
		}
		defer wb.Close()
		return l.LoadWorkbook(wb, sheet)
	case strings.EqualFold(filepath.Ext(name), ".csv"):
		return LoadCSV(r, strings.TrimSuffix(filepath.Base(name), filepath.Ext(name)))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(name))
	}
}

// LoadWorkbook 从已打开的工作簿读取
//
// sheet 为空时按表头识别申込数据 sheet。单元格取原始值，日期列为 Excel 序列值。
func (l *Loader) LoadWorkbook(wb *excelize.File, sheet string) (*model.Table, error) {
	if sheet == "" {
		name, err := l.DetectSheet(wb)
		if err != nil {
			return nil, err
		}
		sheet = name
	} else if idx, err := wb.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: シート「%s」が見つかりません", ErrSheetNotFound, sheet)
	}

	rows, err := wb.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取 Sheet %s 失败: %w", sheet, err)
	}
	table, err := toTable(sheet, rows)
	if err != nil {
		return nil, err
	}
	log.Printf("[importer] sheet=%s rows=%d cols=%d", sheet, table.RowCount(), len(table.Headers))
	return table, nil
}

// DetectSheet 选出表头最像申込数据的 sheet
func (l *Loader) DetectSheet(wb *excelize.File) (string, error) {
	var results []parser.SheetRecognitionResult
	for _, name := range wb.GetSheetList() {
		rows, err := wb.GetRows(name)
		if err != nil || len(rows) == 0 {
			continue
		}
		res := l.recognizer.Recognize(name, rows[0])
		log.Printf("[importer] sheet %q confidence=%.2f matched=%d", name, res.Confidence, res.MatchedFields)
		results = append(results, res)
	}
	best, ok := l.recognizer.Best(results)
	if !ok {
		return "", fmt.Errorf("%w: 工作簿中没有可读取的 sheet", ErrSheetNotFound)
	}
	if best.Confidence < parser.MinConfidence {
		log.Printf("[importer] WARNING: 没有 sheet 达到识别阈值，使用 %q (confidence=%.2f)", best.SheetName, best.Confidence)
	}
	return best.SheetName, nil
}

// LoadCSV 读取 CSV；首行为表头，允许行宽不一致
func LoadCSV(r io.Reader, name string) (*model.Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return toTable(name, rows)
}

func toTable(name string, rows [][]string) (*model.Table, error) {
	if len(rows) < 2 {
		return nil, fmt.Errorf("%w: %s", ErrNoData, name)
	}
	table := &model.Table{
		Name:    name,
		Headers: rows[0],
		Rows:    make([][]any, 0, len(rows)-1),
	}
	for _, row := range rows[1:] {
		cells := make([]any, len(row))
		for i, v := range row {
			cells[i] = v
		}
		table.Rows = append(table.Rows, cells)
	}
	return table, nil
}
