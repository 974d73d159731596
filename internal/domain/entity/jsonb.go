package entity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// jsonbBytes приводит значение из драйвера к []byte.
// pgx через database/sql может вернуть jsonb как string, lib/pq как []byte.
func jsonbBytes(value interface{}) ([]byte, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case []byte:
		return v, nil
	case string:
		return []byte(v), nil
	default:
		return nil, errors.New("failed to unmarshal JSONB value: expected []byte or string")
	}
}

// StringArray - пользовательский тип для работы с JSONB
type StringArray []string

// Scan реализует интерфейс sql.Scanner для StringArray
func (o *StringArray) Scan(value interface{}) error {
	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*o = StringArray{}
		return nil
	}
	return json.Unmarshal(bytes, o)
}

// Value реализует интерфейс driver.Valuer для StringArray
func (o StringArray) Value() (driver.Value, error) {
	if len(o) == 0 {
		return []byte("[]"), nil // пустой JSON массив вместо null
	}
	return json.Marshal(o)
}

// RawJSON хранит произвольный JSON (пояснения, метаданные) без разбора.
type RawJSON json.RawMessage

// Scan реализует sql.Scanner
func (r *RawJSON) Scan(value interface{}) error {
	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		*r = nil
		return nil
	}
	*r = append((*r)[0:0], bytes...)
	return nil
}

// Value реализует driver.Valuer. Пустое значение пишется как NULL.
func (r RawJSON) Value() (driver.Value, error) {
	if len(r) == 0 {
		return nil, nil
	}
	return []byte(r), nil
}

// MarshalJSON отдаёт содержимое как есть
func (r RawJSON) MarshalJSON() ([]byte, error) {
	if len(r) == 0 {
		return []byte("null"), nil
	}
	return r, nil
}

// UnmarshalJSON сохраняет копию исходных байт
func (r *RawJSON) UnmarshalJSON(data []byte) error {
	if r == nil {
		return errors.New("entity.RawJSON: UnmarshalJSON on nil pointer")
	}
	if string(data) == "null" {
		*r = nil
		return nil
	}
	*r = append((*r)[0:0], data...)
	return nil
}

// IsEmpty сообщает, отсутствует ли значение
func (r RawJSON) IsEmpty() bool {
	return len(r) == 0 || string(r) == "null"
}

// scanJSONB разбирает jsonb-колонку в dest
func scanJSONB(value interface{}, dest interface{}) error {
	bytes, err := jsonbBytes(value)
	if err != nil {
		return err
	}
	if len(bytes) == 0 {
		return nil
	}
	return json.Unmarshal(bytes, dest)
}
