package v1

import (
	"encoding/json"
	"fmt"
)

type ProjectDTO struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	ClientName *string  `json:"clientName"`
	HourlyRate *float64 `json:"hourlyRate"`
	Color      string   `json:"color"`
	IsActive   bool     `json:"isActive"`
}

type ProjectEndpoint struct {
	transport *Transport
}

func (e *ProjectEndpoint) List() ([]ProjectDTO, error) {
	resp, err := e.transport.Get("/projects", nil)
	if err != nil {
		return nil, err
	}

	var projects []ProjectDTO
	if err := json.Unmarshal(resp, &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

func (e *ProjectEndpoint) Create(name string, clientName *string, hourlyRate *float64, color *string) (*ProjectDTO, error) {
	payload := map[string]any{
		"name":       name,
		"clientName": clientName,
		"hourlyRate": hourlyRate,
		"color":      color,
	}

	resp, err := e.transport.Post("/projects", payload)
	if err != nil {
		return nil, err
	}

	var project ProjectDTO
	if err := json.Unmarshal(resp, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (e *ProjectEndpoint) Update(dto *ProjectDTO) (*ProjectDTO, error) {
	resp, err := e.transport.Put("/projects", dto)
	if err != nil {
		return nil, err
	}

	var project ProjectDTO
	if err := json.Unmarshal(resp, &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (e *ProjectEndpoint) Delete(id string) error {
	_, err := e.transport.Delete(fmt.Sprintf("/projects/%s", id))
	return err
}
