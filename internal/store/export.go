package store

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"

	"github.com/san-kum/daesim/internal/dae"
)

type ExportData struct {
	Problem       string             `json:"problem"`
	Code          string             `json:"code"`
	Points        int                `json:"points"`
	Times         []float64          `json:"times"`
	States        [][]float64        `json:"states"`
	Sensitivities [][][]float64      `json:"sensitivities,omitempty"`
	Stats         map[string]float64 `json:"stats,omitempty"`
}

// Collect flattens the valid prefix of a solved request into the
// export shape: one state row per written time point, and for each
// point one sensitivity row per input parameter.
func Collect(problem string, req *dae.Request, dim, ninputs int, stats map[string]float64) *ExportData {
	data := &ExportData{
		Problem: problem,
		Code:    req.Code.String(),
		Points:  req.TI,
		Times:   append([]float64(nil), req.T[:req.TI]...),
		States:  make([][]float64, req.TI),
		Stats:   stats,
	}
	for i := 0; i < req.TI; i++ {
		data.States[i] = append([]float64(nil), req.StateAt(i, dim)...)
	}
	if len(req.YS) > 0 && ninputs > 0 {
		data.Sensitivities = make([][][]float64, req.TI)
		for i := 0; i < req.TI; i++ {
			rows := make([][]float64, ninputs)
			for p := 0; p < ninputs; p++ {
				rows[p] = append([]float64(nil), req.SensAt(i, p, dim, ninputs)...)
			}
			data.Sensitivities[i] = rows
		}
	}
	return data
}

func ExportJSON(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportJSONStdout(data *ExportData) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func ExportCSV(path string, data *ExportData) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	dim := 0
	if len(data.States) > 0 {
		dim = len(data.States[0])
	}
	header := make([]string, 0, dim+1)
	header = append(header, "t")
	for j := 0; j < dim; j++ {
		header = append(header, fmt.Sprintf("y%d", j))
	}
	if err := w.Write(header); err != nil {
		return err
	}

	row := make([]string, 0, dim+1)
	for i, t := range data.Times {
		row = row[:0]
		row = append(row, fmt.Sprintf("%g", t))
		for _, v := range data.States[i] {
			row = append(row, fmt.Sprintf("%g", v))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}
