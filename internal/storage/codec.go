package storage

import (
	"encoding/json"
	"errors"

	"fracnet/internal/model"
)

var ErrVersionMismatch = errors.New("record version mismatch")

func EncodeNetwork(n model.Network) ([]byte, error) {
	return json.Marshal(n)
}

func DecodeNetwork(data []byte) (model.Network, error) {
	var network model.Network
	if err := json.Unmarshal(data, &network); err != nil {
		return model.Network{}, err
	}
	if err := checkVersion(network.VersionedRecord); err != nil {
		return model.Network{}, err
	}
	return network, nil
}

func EncodePopulation(p model.Population) ([]byte, error) {
	return json.Marshal(p)
}

func DecodePopulation(data []byte) (model.Population, error) {
	var population model.Population
	if err := json.Unmarshal(data, &population); err != nil {
		return model.Population{}, err
	}
	if err := checkVersion(population.VersionedRecord); err != nil {
		return model.Population{}, err
	}
	return population, nil
}

func EncodeRun(r model.RunRecord) ([]byte, error) {
	return json.Marshal(r)
}

func DecodeRun(data []byte) (model.RunRecord, error) {
	var run model.RunRecord
	if err := json.Unmarshal(data, &run); err != nil {
		return model.RunRecord{}, err
	}
	if err := checkVersion(run.VersionedRecord); err != nil {
		return model.RunRecord{}, err
	}
	return run, nil
}

func EncodeFitnessHistory(history []float64) ([]byte, error) {
	return json.Marshal(history)
}

func DecodeFitnessHistory(data []byte) ([]float64, error) {
	var history []float64
	if err := json.Unmarshal(data, &history); err != nil {
		return nil, err
	}
	return history, nil
}

func EncodeGenerationDiagnostics(diagnostics []model.GenerationDiagnostics) ([]byte, error) {
	return json.Marshal(diagnostics)
}

func DecodeGenerationDiagnostics(data []byte) ([]model.GenerationDiagnostics, error) {
	var diagnostics []model.GenerationDiagnostics
	if err := json.Unmarshal(data, &diagnostics); err != nil {
		return nil, err
	}
	return diagnostics, nil
}

func checkVersion(v model.VersionedRecord) error {
	if v.SchemaVersion != model.CurrentSchemaVersion || v.CodecVersion != model.CurrentCodecVersion {
		return ErrVersionMismatch
	}
	return nil
}
