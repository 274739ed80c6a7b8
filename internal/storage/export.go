package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/san-kum/ivpsolve/internal/dynamo"
	"github.com/san-kum/ivpsolve/internal/sim"
)

// Samples marshals non-finite values as null.
type Samples []float64

func (s Samples) MarshalJSON() ([]byte, error) {
	var b strings.Builder
	b.WriteByte('[')
	for i, v := range s {
		if i > 0 {
			b.WriteByte(',')
		}
		if dynamo.IsFinite(v) {
			b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
		} else {
			b.WriteString("null")
		}
	}
	b.WriteByte(']')
	return []byte(b.String()), nil
}

type ExportData struct {
	Model       string             `json:"model"`
	Integrator  string             `json:"integrator"`
	Y0          float64            `json:"y0"`
	T0          float64            `json:"t0"`
	Tf          float64            `json:"tf"`
	H           float64            `json:"h"`
	Adaptive    bool               `json:"adaptive"`
	Steps       int                `json:"steps"`
	Accepted    int                `json:"accepted"`
	Rejected    int                `json:"rejected"`
	Evaluations int                `json:"evaluations"`
	Aborted     bool               `json:"aborted"`
	Times       Samples            `json:"times"`
	States      Samples            `json:"states"`
	Metrics     map[string]float64 `json:"metrics"`
}

func NewExportData(meta RunMetadata, result *sim.Result) ExportData {
	return ExportData{
		Model:       meta.Model,
		Integrator:  meta.Integrator,
		Y0:          meta.Y0,
		T0:          meta.T0,
		Tf:          meta.Tf,
		H:           meta.H,
		Adaptive:    meta.Adaptive,
		Steps:       len(result.Times),
		Accepted:    result.Accepted,
		Rejected:    result.Rejected,
		Evaluations: result.Evaluations,
		Aborted:     result.Aborted,
		Times:       Samples(result.Times),
		States:      Samples(result.States),
		Metrics:     finiteMetrics(result.Metrics),
	}
}

func ExportJSON(w io.Writer, data ExportData) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONFile(path string, data ExportData) error {
	return writeFile(path, func(w io.Writer) error { return ExportJSON(w, data) })
}

// ExportCSV writes a "t,y" table with full float64 precision.
func ExportCSV(w io.Writer, times, states []float64) error {
	if len(times) != len(states) {
		return fmt.Errorf("storage: %d times but %d states", len(times), len(states))
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"t", "y"}); err != nil {
		return err
	}
	for i := range times {
		row := []string{
			strconv.FormatFloat(times[i], 'g', -1, 64),
			strconv.FormatFloat(states[i], 'g', -1, 64),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ExportCSVFile(path string, times, states []float64) error {
	return writeFile(path, func(w io.Writer) error { return ExportCSV(w, times, states) })
}

// ReadCSV parses the output of ExportCSV.
func ReadCSV(r io.Reader) (*dynamo.Trajectory, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 2

	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty trajectory file")
	}

	tr := dynamo.NewTrajectory(len(records) - 1)
	for i, record := range records[1:] {
		t, err := strconv.ParseFloat(record[0], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		y, err := strconv.ParseFloat(record[1], 64)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		tr.Append(t, y)
	}
	return tr, nil
}

func LoadCSVFile(path string) (*dynamo.Trajectory, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ReadCSV(f)
}
