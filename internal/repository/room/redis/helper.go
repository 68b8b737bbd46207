package redis

import (
	"context"
	"reflect"

	"github.com/redis/go-redis/v9"
)

// structToFields maps struct fields to their redis tags.
func structToFields(value any) map[string]any {
	v := reflect.ValueOf(value)
	if v.Kind() == reflect.Ptr {
		v = v.Elem()
	}

	fields := make(map[string]any, v.NumField())
	t := v.Type()

	for i := 0; i < v.NumField(); i++ {
		tag := t.Field(i).Tag.Get("redis")
		if tag == "" || tag == "-" {
			continue
		}

		fields[tag] = v.Field(i).Interface()
	}

	return fields
}

// scriptArgs prepends the key ttl in seconds to flattened field/value pairs.
func (r repo) scriptArgs(fields map[string]any) []any {
	args := make([]any, 0, len(fields)*2+1)
	args = append(args, int64(r.expireDuration.Seconds()))
	for k, v := range fields {
		args = append(args, k, v)
	}

	return args
}

func (r repo) executePipe(ctx context.Context, pipe redis.Pipeliner) error {
	cmds, err := pipe.Exec(ctx)
	if err != nil {
		for _, cmd := range cmds {
			if err := cmd.Err(); err != nil {
				return err
			}
		}

		return err
	}

	return nil
}
