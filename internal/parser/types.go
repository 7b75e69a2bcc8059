package parser

// SheetRecognitionResult Sheet 识别结果
type SheetRecognitionResult struct {
	SheetName     string   `json:"sheetName"`
	Confidence    float64  `json:"confidence"` // 置信度 0-1
	MatchedFields int      `json:"matchedFields"`
	MissingFields []string `json:"missingFields"`
}

// MinConfidence 识别阈值；都达不到时仍取命中最多的 sheet，并记录告警
const MinConfidence = 0.5
