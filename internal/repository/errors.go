package repository

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
)

// ErrDuplicate は一意制約違反を表す。
var ErrDuplicate = errors.New("duplicate record")

// uniqueViolation はPostgreSQLの一意制約違反のSQLSTATE。
const uniqueViolation = "23505"

// wrapError はドライバーのエラーをラップする。一意制約違反はErrDuplicateに変換する。
func wrapError(op string, err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
		return fmt.Errorf("%s: %w (%s)", op, ErrDuplicate, pqErr.Constraint)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// affected はExecの結果から影響行数を取り出す。
func affected(op string, result sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, wrapError(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s: failed to get rows affected: %w", op, err)
	}
	return n, nil
}

// scanStrings は単一の文字列列を持つ結果セットを文字列スライスに読み出す。
func scanStrings(rows *sql.Rows) ([]string, error) {
	defer rows.Close()
	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// inIDs はIDスライスを = ANY($n) 用のパラメータに変換する。
func inIDs(ids []string) any {
	return pq.Array(ids)
}
