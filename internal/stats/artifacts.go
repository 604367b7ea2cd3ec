package stats

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"fracnet/internal/model"
)

// RunArtifacts bundles everything one engine run leaves behind on disk.
type RunArtifacts struct {
	Run         model.RunRecord               `json:"run"`
	History     []float64                     `json:"fitness_history"`
	Diagnostics []model.GenerationDiagnostics `json:"diagnostics"`
	Best        model.Network                 `json:"best_network"`
}

// WriteRunArtifacts persists one run under dir/<run_id>/: a JSON bundle plus a
// CSV of the fitness trajectory for quick plotting.
func WriteRunArtifacts(dir string, artifacts RunArtifacts) (string, error) {
	if artifacts.Run.RunID == "" {
		return "", fmt.Errorf("run id is required")
	}
	runDir := filepath.Join(dir, artifacts.Run.RunID)
	if err := os.MkdirAll(runDir, 0o755); err != nil {
		return "", err
	}

	payload, err := json.MarshalIndent(artifacts, "", "  ")
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(filepath.Join(runDir, "run.json"), payload, 0o644); err != nil {
		return "", err
	}

	if err := writeHistoryCSV(filepath.Join(runDir, "fitness_history.csv"), artifacts.History); err != nil {
		return "", err
	}
	return runDir, nil
}

// ReadRunArtifacts loads the JSON bundle written by WriteRunArtifacts.
func ReadRunArtifacts(dir, runID string) (RunArtifacts, error) {
	payload, err := os.ReadFile(filepath.Join(dir, runID, "run.json"))
	if err != nil {
		return RunArtifacts{}, err
	}
	var artifacts RunArtifacts
	if err := json.Unmarshal(payload, &artifacts); err != nil {
		return RunArtifacts{}, err
	}
	return artifacts, nil
}

func writeHistoryCSV(path string, history []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write([]string{"generation", "best_fitness"}); err != nil {
		return err
	}
	for i, best := range history {
		record := []string{
			strconv.Itoa(i + 1),
			strconv.FormatFloat(best, 'g', -1, 64),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
