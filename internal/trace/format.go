package trace

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// Format is the encoding of streamed or dumped events.
type Format uint8

const (
	FormatAuto    Format = iota // by output path extension
	FormatText                  // indented, for humans
	FormatNDJSON                // one JSON object per line
	FormatMsgpack               // concatenated msgpack maps
)

// ParseFormat converts a flag value to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return FormatAuto, nil
	case "text":
		return FormatText, nil
	case "ndjson", "json":
		return FormatNDJSON, nil
	case "msgpack":
		return FormatMsgpack, nil
	default:
		return FormatAuto, fmt.Errorf("invalid trace format: %q (expected: auto|text|ndjson|msgpack)", s)
	}
}

// FormatEvent encodes one event.
func FormatEvent(ev *Event, format Format) []byte {
	switch format {
	case FormatNDJSON:
		data, err := json.Marshal(newRecord(ev))
		if err != nil {
			data = []byte(`{"kind":"error"}`)
		}
		return append(data, '\n')
	case FormatMsgpack:
		data, err := msgpack.Marshal(newRecord(ev))
		if err != nil {
			return nil
		}
		return data
	default:
		return formatText(ev)
	}
}

// record is the wire shape shared by NDJSON and msgpack.
type record struct {
	Time     string            `json:"time" msgpack:"time"`
	Seq      uint64            `json:"seq" msgpack:"seq"`
	Kind     string            `json:"kind" msgpack:"kind"`
	Scope    string            `json:"scope" msgpack:"scope"`
	SpanID   uint64            `json:"span_id" msgpack:"span_id"`
	ParentID uint64            `json:"parent_id,omitempty" msgpack:"parent_id,omitempty"`
	Name     string            `json:"name" msgpack:"name"`
	Detail   string            `json:"detail,omitempty" msgpack:"detail,omitempty"`
	Extra    map[string]string `json:"extra,omitempty" msgpack:"extra,omitempty"`
}

func newRecord(ev *Event) record {
	return record{
		Time:     ev.Time.Format("2006-01-02T15:04:05.000000Z07:00"),
		Seq:      ev.Seq,
		Kind:     ev.Kind.String(),
		Scope:    ev.Scope.String(),
		SpanID:   ev.SpanID,
		ParentID: ev.ParentID,
		Name:     ev.Name,
		Detail:   ev.Detail,
		Extra:    ev.Extra,
	}
}

var kindMarks = map[Kind]string{
	KindSpanBegin: "→ ",
	KindSpanEnd:   "← ",
	KindPoint:     "• ",
	KindHeartbeat: "♡ ",
}

// formatText: "[15:04:05.000000] <indent by scope><mark>name (detail) {k=v, ...}"
func formatText(ev *Event) []byte {
	var b bytes.Buffer
	b.WriteString("[" + ev.Time.Format("15:04:05.000000") + "] ")
	b.WriteString(strings.Repeat("  ", max(int(ev.Scope)-1, 0)))
	b.WriteString(kindMarks[ev.Kind])
	b.WriteString(ev.Name)
	if ev.Detail != "" {
		b.WriteString(" (" + ev.Detail + ")")
	}
	if len(ev.Extra) > 0 {
		keys := make([]string, 0, len(ev.Extra))
		for k := range ev.Extra {
			keys = append(keys, k)
		}
		slices.Sort(keys)
		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + "=" + ev.Extra[k]
		}
		b.WriteString(" {" + strings.Join(pairs, ", ") + "}")
	}
	b.WriteByte('\n')
	return b.Bytes()
}
