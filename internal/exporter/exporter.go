package exporter

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"leadreport/internal/model"
	"leadreport/internal/parser"
)

// 列宽上下限（字符宽度）
const (
	minColWidth = 8
	maxColWidth = 48
)

// Exporter 报表写出器
//
// 每张报表 sheet 先整体清空再重写，重复运行结果一致；工作簿中的其他 sheet 保持不动。
type Exporter struct {
	wb          *excelize.File
	boldStyle   int
	created     bool
	placeholder string // 新建工作簿自带的空 sheet，写入第一张报表后删除
}

// NewExporter 基于新建工作簿
func NewExporter() (*Exporter, error) {
	wb := excelize.NewFile()
	e, err := newExporter(wb)
	if err != nil {
		_ = wb.Close()
		return nil, err
	}
	e.created = true
	e.placeholder = wb.GetSheetName(wb.GetActiveSheetIndex())
	return e, nil
}

// OpenExporter 打开已有工作簿（写回源文件）
func OpenExporter(path string) (*Exporter, error) {
	wb, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("打开输出工作簿失败: %w", err)
	}
	e, err := newExporter(wb)
	if err != nil {
		_ = wb.Close()
		return nil, err
	}
	return e, nil
}

func newExporter(wb *excelize.File) (*Exporter, error) {
	style, err := wb.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create bold style: %w", err)
	}
	return &Exporter{wb: wb, boldStyle: style}, nil
}

// WriteSheet 清空并写入一张报表
func (e *Exporter) WriteSheet(s model.Sheet) error {
	if strings.TrimSpace(s.Name) == "" {
		return fmt.Errorf("sheet name is empty")
	}
	if err := e.resetSheet(s.Name); err != nil {
		return fmt.Errorf("重建 %s 失败: %w", s.Name, err)
	}

	rows := s.Padded()
	for i, cells := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		row := cells
		if err := e.wb.SetSheetRow(s.Name, cell, &row); err != nil {
			return fmt.Errorf("写入 %s 第 %d 行失败: %w", s.Name, i+1, err)
		}
		if s.Rows[i].Bold {
			if err := e.wb.SetRowStyle(s.Name, i+1, i+1, e.boldStyle); err != nil {
				return fmt.Errorf("设置 %s 第 %d 行样式失败: %w", s.Name, i+1, err)
			}
		}
	}

	if err := e.fitColumns(s.Name, rows); err != nil {
		return err
	}
	return e.dropPlaceholder(s.Name)
}

// SaveAs 保存到指定路径
func (e *Exporter) SaveAs(path string) error {
	if e.created {
		e.wb.SetActiveSheet(0)
	}
	if err := e.wb.SaveAs(path); err != nil {
		return fmt.Errorf("保存工作簿失败: %w", err)
	}
	return nil
}

// Close 释放工作簿
func (e *Exporter) Close() error {
	return e.wb.Close()
}

// resetSheet 保证 name 是一张空 sheet；已存在时用新 sheet 替换（位置移到末尾）
func (e *Exporter) resetSheet(name string) error {
	idx, err := e.wb.GetSheetIndex(name)
	if err != nil {
		return err
	}
	if idx < 0 {
		_, err := e.wb.NewSheet(name)
		return err
	}

	tmp := name + "~"
	if _, err := e.wb.NewSheet(tmp); err != nil {
		return err
	}
	if err := e.wb.DeleteSheet(name); err != nil {
		return err
	}
	return e.wb.SetSheetName(tmp, name)
}

func (e *Exporter) dropPlaceholder(written string) error {
	if e.placeholder == "" || e.placeholder == written {
		e.placeholder = ""
		return nil
	}
	name := e.placeholder
	e.placeholder = ""
	if idx, err := e.wb.GetSheetIndex(name); err != nil || idx < 0 {
		return nil
	}
	return e.wb.DeleteSheet(name)
}

func (e *Exporter) fitColumns(sheet string, rows [][]any) error {
	widths := make(map[int]int)
	for _, row := range rows {
		for j, v := range row {
			// 标题与小节行只占首列，不参与列宽
			if j == 0 && len(row) > 1 && parser.CellString(row[1]) == "" {
				continue
			}
			if w := displayWidth(parser.CellString(v)); w > widths[j] {
				widths[j] = w
			}
		}
	}
	for j, w := range widths {
		col, err := excelize.ColumnNumberToName(j + 1)
		if err != nil {
			return err
		}
		width := float64(min(max(w+2, minColWidth), maxColWidth))
		if err := e.wb.SetColWidth(sheet, col, col, width); err != nil {
			return fmt.Errorf("设置 %s 列宽失败: %w", sheet, err)
		}
	}
	return nil
}

// displayWidth 全角字符按 2 计
func displayWidth(s string) int {
	w := 0
	for _, r := range s {
		if utf8.RuneLen(r) > 1 {
			w += 2
			continue
		}
		w++
	}
	return w
}
