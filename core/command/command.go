// Copyright 2021 Dalarub & Ettrich GmbH - All Rights Reserved
// Unauthorized copying of this file, via any medium is strictly prohibited
// Proprietary and confidential
// info@dalarub.com
//

// Package command implements the in-place mutation operators a
// document's fields can carry: $inc, $push, $pushAll, $pull and
// $pullAll. These mirror a document store's own update operators, so
// a command once built can also be handed straight to a store that
// understands the same dialect.
package command

import "github.com/relabs-tech/collectiond/core/logger"

// Set is a mapping from property name to the commands found for it,
// keyed by operator ($inc, $push, ...).
type Set map[string]map[string]interface{}

// Build scans item for fields whose value is a non-sequence map
// containing at least one "$"-prefixed sub-key, and records them as
// commands. The field itself is left untouched in item - sanitize
// still runs over the raw value - but the returned Set is what Exec
// later applies on top.
func Build(item map[string]interface{}) Set {
	commands := Set{}
	for key, value := range item {
		sub, ok := value.(map[string]interface{})
		if !ok {
			continue
		}
		var ops map[string]interface{}
		for subKey, subValue := range sub {
			if len(subKey) > 0 && subKey[0] == '$' {
				if ops == nil {
					ops = map[string]interface{}{}
				}
				ops[subKey] = subValue
			}
		}
		if ops != nil {
			commands[key] = ops
		}
	}
	return commands
}

// Exec applies commands onto obj in place. A command whose operand
// does not fit is skipped without logging (a non-numeric $inc delta,
// $pull or $pullAll on a non-sequence); $inc treats a non-numeric
// existing value as 0. A panic while applying a single command is
// recovered and logged at debug level; the object survives with
// whatever commands did apply cleanly.
func Exec(obj map[string]interface{}, commands Set) {
	for key, ops := range commands {
		for op, val := range ops {
			applyOne(obj, key, op, val)
		}
	}
}

func applyOne(obj map[string]interface{}, key, op string, val interface{}) {
	defer func() {
		if r := recover(); r != nil {
			logger.Default().Debugf("command %s on %s: recovered from %v", op, key, r)
		}
	}()

	switch op {
	case "$inc":
		current, _ := toFloat(obj[key])
		delta, ok := toFloat(val)
		if !ok {
			return
		}
		obj[key] = current + delta

	case "$push":
		seq, ok := asSlice(obj[key])
		if ok {
			obj[key] = append(seq, val)
		} else {
			obj[key] = []interface{}{val}
		}

	case "$pushAll":
		items, itemsOK := asSlice(val)
		seq, seqOK := asSlice(obj[key])
		if itemsOK && seqOK {
			obj[key] = append(seq, items...)
		} else {
			obj[key] = val
		}

	case "$pull":
		seq, ok := asSlice(obj[key])
		if !ok {
			return
		}
		filtered := make([]interface{}, 0, len(seq))
		for _, item := range seq {
			if item != val {
				filtered = append(filtered, item)
			}
		}
		obj[key] = filtered

	case "$pullAll":
		seq, ok := asSlice(obj[key])
		if !ok {
			return
		}
		remove, ok := asSlice(val)
		if !ok {
			return
		}
		filtered := make([]interface{}, 0, len(seq))
		for _, item := range seq {
			if !containsAny(remove, item) {
				filtered = append(filtered, item)
			}
		}
		obj[key] = filtered
	}
}

func containsAny(haystack []interface{}, needle interface{}) bool {
	for _, item := range haystack {
		if item == needle {
			return true
		}
	}
	return false
}

func asSlice(value interface{}) ([]interface{}, bool) {
	seq, ok := value.([]interface{})
	return seq, ok
}

func toFloat(value interface{}) (float64, bool) {
	switch v := value.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case nil:
		return 0, true
	}
	return 0, false
}
