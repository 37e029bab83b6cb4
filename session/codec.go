package session

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
	"github.com/xiaoyuanzhu-com/todos/models"
)

// ErrInvalidPayload is returned when stored session data can't be trusted
var ErrInvalidPayload = errors.New("invalid session payload")

//go:embed schema.json
var schemaJSON []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("session.json", bytes.NewReader(schemaJSON)); err != nil {
		return nil, err
	}
	return compiler.Compile("session.json")
})

// Encode serializes session data for storage
func Encode(d *Data) ([]byte, error) {
	if d.TodoLists == nil {
		d.TodoLists = []*models.TodoList{}
	}
	for _, list := range d.TodoLists {
		if list.Todos == nil {
			list.Todos = []*models.Todo{}
		}
	}
	if d.Version == 0 {
		d.Version = DataVersion
	}

	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal session: %w", err)
	}
	return b, nil
}

// Decode parses stored session data. The payload must match the session
// schema and keep list and todo ids unique and within their counters.
func Decode(b []byte) (*Data, error) {
	schema, err := compileSchema()
	if err != nil {
		return nil, fmt.Errorf("compile session schema: %w", err)
	}

	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := schema.Validate(raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var d Data
	if err := json.Unmarshal(b, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if err := checkIDs(&d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	return &d, nil
}

func checkIDs(d *Data) error {
	listIDs := make(map[int]bool, len(d.TodoLists))
	for _, list := range d.TodoLists {
		if listIDs[list.ID] {
			return fmt.Errorf("duplicate list id %d", list.ID)
		}
		if list.ID > d.LastListID {
			return fmt.Errorf("list id %d above counter %d", list.ID, d.LastListID)
		}
		listIDs[list.ID] = true

		todoIDs := make(map[int]bool, len(list.Todos))
		for _, todo := range list.Todos {
			if todoIDs[todo.ID] {
				return fmt.Errorf("duplicate todo id %d in list %d", todo.ID, list.ID)
			}
			if todo.ID > list.LastTodoID {
				return fmt.Errorf("todo id %d above counter %d in list %d", todo.ID, list.LastTodoID, list.ID)
			}
			todoIDs[todo.ID] = true
		}
	}
	return nil
}
