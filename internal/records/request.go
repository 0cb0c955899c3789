// Package records はフィルタ付きセッション集計を提供する。
//
// 処理は3段階に分かれる:
//   - Compile: クライアントのフィルタ指定を検証し、結合済みセッション行に対する述語へ変換する
//   - Pipeline: 結合・絞り込み・行ごとの集計・全体集計を型付きのステージで実行する
//   - Engine: ユーザーのセッションを読み出してパイプラインを実行する
package records

import (
	"encoding/json"
)

// Request は POST /records/filtered のリクエストボディ。
// 4つのフィルタフラグは必須。
type Request struct {
	FilterClass              *bool    `json:"filterClass"`
	FilterAssignment         *bool    `json:"filterAssignment"`
	FilterDistractionType    *bool    `json:"filterDistractionType"`
	FilterDates              *bool    `json:"filterDates"`
	StartDate                *string  `json:"startDate"`
	EndDate                  *string  `json:"endDate"`
	SelectedClasses          RefList  `json:"selectedClasses"`
	SelectedAssignments      RefList  `json:"selectedAssignments"`
	SelectedDistractionTypes []string `json:"selectedDistractionTypes"`
}

// RefList はIDの一覧。各要素は "id" 文字列または {"_id": "id"} オブジェクトを受け付ける。
// どちらにも該当しない要素は空文字列として保持し、検証で不正なIDとして拒否する。
type RefList []string

// UnmarshalJSON はjson.Unmarshalerを実装する。
func (l *RefList) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw == nil {
		*l = nil
		return nil
	}

	out := make(RefList, 0, len(raw))
	for _, item := range raw {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			out = append(out, s)
			continue
		}
		var obj struct {
			ID string `json:"_id"`
		}
		if err := json.Unmarshal(item, &obj); err == nil {
			out = append(out, obj.ID)
			continue
		}
		out = append(out, "")
	}
	*l = out
	return nil
}
