package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// NotAvailable is shown for any cell whose value is unknown: a metric the
// experiment did not report, or a finish time for a running experiment.
const NotAvailable = "N/A"

// MetricKind describes the JSON shape a metric value was reported with.
type MetricKind int

const (
	MetricNull MetricKind = iota
	MetricNumber
	MetricString
	MetricBool
)

// MetricValue is a single reported metric. Numbers keep their original JSON
// text so integers never pick up a decimal point on display.
type MetricValue struct {
	Kind MetricKind
	num  json.Number
	str  string
	b    bool
}

// Number builds a numeric metric value.
func Number(v float64) MetricValue {
	return MetricValue{Kind: MetricNumber, num: json.Number(strconv.FormatFloat(v, 'g', -1, 64))}
}

// Int builds an integer metric value.
func Int(v int64) MetricValue {
	return MetricValue{Kind: MetricNumber, num: json.Number(strconv.FormatInt(v, 10))}
}

// Text builds a string metric value.
func Text(v string) MetricValue {
	return MetricValue{Kind: MetricString, str: v}
}

// Bool builds a boolean metric value.
func Bool(v bool) MetricValue {
	return MetricValue{Kind: MetricBool, b: v}
}

// ParseMetricValue interprets a command-line value the way JSON would:
// numbers, true, false and null are recognised, anything else is text.
func ParseMetricValue(s string) MetricValue {
	switch s {
	case "true", "false":
		return Bool(s == "true")
	case "null":
		return MetricValue{Kind: MetricNull}
	}
	if _, err := strconv.ParseFloat(s, 64); err == nil && json.Valid([]byte(s)) {
		return MetricValue{Kind: MetricNumber, num: json.Number(s)}
	}
	return Text(s)
}

// Float returns the numeric value and whether the metric is a number.
func (v MetricValue) Float() (float64, bool) {
	if v.Kind != MetricNumber {
		return 0, false
	}
	f, err := v.num.Float64()
	if err != nil {
		return 0, false
	}
	return f, true
}

// String is the canonical display form of the value.
func (v MetricValue) String() string {
	switch v.Kind {
	case MetricNumber:
		if i, err := v.num.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if f, err := v.num.Float64(); err == nil {
			return strconv.FormatFloat(f, 'g', -1, 64)
		}
		return v.num.String()
	case MetricString:
		return v.str
	case MetricBool:
		return strconv.FormatBool(v.b)
	default:
		return NotAvailable
	}
}

func (v MetricValue) MarshalJSON() ([]byte, error) {
	switch v.Kind {
	case MetricNumber:
		return []byte(v.num.String()), nil
	case MetricString:
		return json.Marshal(v.str)
	case MetricBool:
		return json.Marshal(v.b)
	default:
		return []byte("null"), nil
	}
}

func (v *MetricValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case nil:
		*v = MetricValue{Kind: MetricNull}
	case json.Number:
		*v = MetricValue{Kind: MetricNumber, num: x}
	case string:
		*v = Text(x)
	case bool:
		*v = Bool(x)
	default:
		return fmt.Errorf("unsupported metric value %s", string(data))
	}
	return nil
}

// Metric is one named entry of an experiment's results.
type Metric struct {
	Name  string
	Value MetricValue
}

// Metrics keeps metrics in the order the server reported them.
type Metrics []Metric

// Get returns the value stored under name.
func (m Metrics) Get(name string) (MetricValue, bool) {
	for _, metric := range m {
		if metric.Name == name {
			return metric.Value, true
		}
	}
	return MetricValue{}, false
}

// Names returns metric names in reported order.
func (m Metrics) Names() []string {
	names := make([]string, 0, len(m))
	for _, metric := range m {
		names = append(names, metric.Name)
	}
	return names
}

// Set replaces the value for name, appending it when new.
func (m Metrics) Set(name string, value MetricValue) Metrics {
	for i := range m {
		if m[i].Name == name {
			m[i].Value = value
			return m
		}
	}
	return append(m, Metric{Name: name, Value: value})
}

func (m Metrics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, metric := range m {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(metric.Name)
		if err != nil {
			return nil, err
		}
		val, err := metric.Value.MarshalJSON()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes a JSON object while preserving key order. A repeated
// key keeps its first position and its last value.
func (m *Metrics) UnmarshalJSON(data []byte) error {
	if string(bytes.TrimSpace(data)) == "null" {
		*m = nil
		return nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return fmt.Errorf("metrics must be a JSON object")
	}

	out := Metrics{}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return err
		}
		name, ok := tok.(string)
		if !ok {
			return fmt.Errorf("unexpected metrics key %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return fmt.Errorf("failed to decode metric %q: %w", name, err)
		}
		var value MetricValue
		if err := value.UnmarshalJSON(raw); err != nil {
			return fmt.Errorf("failed to decode metric %q: %w", name, err)
		}
		out = out.Set(name, value)
	}
	if _, err := dec.Token(); err != nil {
		return err
	}

	*m = out
	return nil
}
