package exploration

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Column names with a fixed meaning. The runtime column is found by
// substring instead, see runtimeIndex.
const (
	RewriteColumn    = "rewrite"
	TimestampColumn  = "timestamp"
	ErrorLevelColumn = "error-level"
)

// metadata columns are never treated as tuning parameters
var metadataColumns = map[string]bool{
	RewriteColumn:     true,
	TimestampColumn:   true,
	ErrorLevelColumn:  true,
	"low-level hash":  true,
	"high-level hash": true,
}

var tensorNumber = regexp.MustCompile(`\d+\.?\d*`)

// header describes where the interesting columns of a CSV file are.
// Indices are -1 when the column is absent.
type header struct {
	names      []string
	runtime    int
	validity   int
	rewrite    int
	timestamp  int
	errorLevel int
	params     []int
}

func newHeader(names []string) (*header, error) {
	h := &header{names: names, rewrite: -1, timestamp: -1, errorLevel: -1, validity: -1}

	h.runtime = runtimeIndex(names)
	if h.runtime < 0 {
		return nil, fmt.Errorf("%w: no column containing \"runtime\" in header %v", ErrSchema, names)
	}
	// the validity flag sits right after the runtime
	if h.runtime+1 < len(names) {
		h.validity = h.runtime + 1
	}

	for i, name := range names {
		switch name {
		case RewriteColumn:
			h.rewrite = i
		case TimestampColumn:
			h.timestamp = i
		case ErrorLevelColumn:
			h.errorLevel = i
		}
		if i < h.runtime && !metadataColumns[name] {
			h.params = append(h.params, i)
		}
	}
	return h, nil
}

// runtimeIndex returns the index of the last header containing "runtime", or -1.
func runtimeIndex(names []string) int {
	index := -1
	for i, name := range names {
		if strings.Contains(name, "runtime") {
			index = i
		}
	}
	return index
}

//=============================================================================
// Loading
//=============================================================================

// LoadRun reads one CSV file into a Run. The file is closed before returning,
// whether parsing succeeded or not.
func LoadRun(path string) (*Run, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	samples, timestamped, err := ReadSamples(file, path)
	if err != nil {
		return nil, err
	}
	log.WithFields(log.Fields{"file": path, "samples": len(samples)}).Debug("loaded run")

	return &Run{
		Name:        filepath.Base(path),
		Path:        path,
		Samples:     samples,
		Timestamped: timestamped,
	}, nil
}

// ReadSamples parses CSV content into samples in row order. 'source' is only
// used in error messages. The second return value reports whether the input
// had a timestamp column.
func ReadSamples(r io.Reader, source string) ([]Sample, bool, error) {
	reader := csv.NewReader(r)

	names, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, false, fmt.Errorf("%w: %s has no header", ErrSchema, source)
	}
	if err != nil {
		return nil, false, fmt.Errorf("%w: %s: %v", ErrParse, source, err)
	}

	h, err := newHeader(names)
	if err != nil {
		return nil, false, fmt.Errorf("%s: %w", source, err)
	}

	samples := make([]Sample, 0)
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, false, fmt.Errorf("%w: %s: %v", ErrParse, source, err)
		}
		line, _ := reader.FieldPos(0)

		sample, err := h.sample(row, source, line)
		if err != nil {
			return nil, false, err
		}
		samples = append(samples, sample)
	}
	return samples, h.timestamp >= 0, nil
}

// sample converts one CSV row into a Sample.
func (h *header) sample(row []string, source string, line int) (Sample, error) {
	s := Sample{
		Params: make(map[string]ParamValue, len(h.params)),
		Fields: make(map[string]string, len(row)),
	}
	for i, value := range row {
		s.Fields[h.names[i]] = value
	}

	for _, i := range h.params {
		value, ok, err := parseParam(row[i])
		if err != nil {
			return s, parseError(source, line, h.names[i], row[i])
		}
		if ok {
			s.Params[h.names[i]] = value
		}
	}

	raw := strings.TrimSpace(row[h.runtime])
	switch {
	case raw == "-1":
		s.Runtime = InvalidRuntime
	case h.validity >= 0 && strings.TrimSpace(row[h.validity]) == "False":
		s.Runtime = InvalidRuntime
	default:
		runtime, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return s, parseError(source, line, h.names[h.runtime], raw)
		}
		// a valid runtime is a finite positive number
		if math.IsNaN(runtime) || math.IsInf(runtime, 0) || runtime <= 0 {
			s.Runtime = InvalidRuntime
		} else {
			s.Runtime = runtime
			s.Valid = true
		}
	}

	if h.rewrite >= 0 {
		s.Rewrite = row[h.rewrite]
	}
	if h.errorLevel >= 0 {
		s.ErrorLevel = row[h.errorLevel]
	}
	if h.timestamp >= 0 {
		ts, err := strconv.ParseFloat(strings.TrimSpace(row[h.timestamp]), 64)
		if err != nil {
			return s, parseError(source, line, TimestampColumn, row[h.timestamp])
		}
		s.Timestamp = ts
	}
	return s, nil
}

// parseParam interprets a parameter cell. Tensors yield their first number,
// parenthesised values are tuples, plain numbers are numbers. Any other text is
// not a parameter (ok == false). A malformed tuple or tensor is an error.
func parseParam(raw string) (ParamValue, bool, error) {
	raw = strings.TrimSpace(raw)

	if strings.Contains(raw, "tensor") {
		match := tensorNumber.FindString(raw)
		if match == "" {
			return ParamValue{}, false, ErrParse
		}
		number, err := strconv.ParseFloat(match, 64)
		if err != nil {
			return ParamValue{}, false, err
		}
		return ParamValue{Number: number}, true, nil
	}

	if strings.HasPrefix(raw, "(") {
		inner := strings.TrimSuffix(strings.TrimPrefix(raw, "("), ")")
		tuple := make([]float64, 0)
		for _, part := range strings.Split(inner, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			number, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return ParamValue{}, false, err
			}
			tuple = append(tuple, number)
		}
		return ParamValue{Tuple: tuple}, true, nil
	}

	number, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return ParamValue{}, false, nil
	}
	return ParamValue{Number: number}, true, nil
}
