package database

import (
	"encoding/json"
	"fmt"
	"time"
)

// LogAction appends a dispatched action to the append-only action log.
// Every dispatch is recorded, success or failure.
func (d *Database) LogAction(playerID, action string, args, result any) error {
	argsJSON, err := json.Marshal(args)
	if err != nil {
		argsJSON = []byte("{}")
	}
	resultJSON, err := json.Marshal(result)
	if err != nil {
		resultJSON = []byte("{}")
	}

	query := d.qb.Build(`INSERT INTO action_log (ts, player_id, action, args_json, result_json)
		VALUES (?, ?, ?, ?, ?)`)
	_, err = d.db.Exec(query, time.Now().UnixMilli(), playerID, action,
		string(argsJSON), string(resultJSON))
	if err != nil {
		return fmt.Errorf("failed to log action: %w", err)
	}
	return nil
}
