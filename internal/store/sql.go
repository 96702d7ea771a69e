package store

import "strconv"

// PositionalArgs orders RunSQL params keyed "1", "2", ... into driver
// arguments. Collection stops at the first missing position.
func PositionalArgs(params map[string]any) []any {
	args := make([]any, 0, len(params))
	for i := 1; i <= len(params); i++ {
		val, ok := params[strconv.Itoa(i)]
		if !ok {
			break
		}
		args = append(args, val)
	}
	return args
}
