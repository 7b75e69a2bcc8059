package importer

import "errors"

var (
	// ErrSourceNotFound 数据源文件不存在
	ErrSourceNotFound = errors.New("source not found")
	// ErrSheetNotFound 指定的 sheet 不存在，或工作簿中没有非空 sheet
	ErrSheetNotFound = errors.New("sheet not found")
	// ErrNoData 表内只有表头或为空
	ErrNoData = errors.New("no data rows")
	// ErrUnsupportedFormat 不支持的文件类型
	ErrUnsupportedFormat = errors.New("unsupported file format")
)
