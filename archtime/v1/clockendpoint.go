package v1

import (
	"encoding/json"
	"fmt"
)

type EntryDTO struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ClockOut     *string `json:"clockOut"`
	EntryDate    string  `json:"entryDate"`
	TotalMinutes *int    `json:"totalMinutes"`
	Hash         *string `json:"hash"`
	Source       string  `json:"source"`
}

type ActiveSessionDTO struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ProjectID    *string `json:"projectId"`
	ProjectName  *string `json:"projectName"`
	ProjectColor *string `json:"projectColor"`
}

type SummaryEntryDTO struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ClockOut     *string `json:"clockOut"`
	TotalMinutes *int    `json:"totalMinutes"`
	ProjectName  *string `json:"projectName"`
	ProjectColor *string `json:"projectColor"`
}

type DailySummaryDTO struct {
	TotalMinutes int               `json:"totalMinutes"`
	SessionCount int               `json:"sessionCount"`
	Entries      []SummaryEntryDTO `json:"entries"`
}

type HistoryEntryDTO struct {
	ID           string  `json:"id"`
	ClockIn      string  `json:"clockIn"`
	ClockOut     string  `json:"clockOut"`
	TotalMinutes *int    `json:"totalMinutes"`
	ProjectID    *string `json:"projectId"`
	ProjectName  *string `json:"projectName"`
	ProjectColor *string `json:"projectColor"`
	EntryDate    string  `json:"entryDate"`
	Source       string  `json:"source"`
}

type MonthHistoryDTO struct {
	Entries      []HistoryEntryDTO `json:"entries"`
	TotalMinutes int               `json:"totalMinutes"`
	SessionCount int               `json:"sessionCount"`
}

type ClockEndpoint struct {
	transport *Transport
}

func (e *ClockEndpoint) ClockIn(projectID *string) (*EntryDTO, error) {
	payload := map[string]*string{"projectId": projectID}

	resp, err := e.transport.Post("/clock", payload)
	if err != nil {
		return nil, err
	}

	var entry EntryDTO
	if err := json.Unmarshal(resp, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (e *ClockEndpoint) ClockOut(id string) (*EntryDTO, error) {
	resp, err := e.transport.Put(fmt.Sprintf("/clock/%s", id), nil)
	if err != nil {
		return nil, err
	}

	var entry EntryDTO
	if err := json.Unmarshal(resp, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (e *ClockEndpoint) Edit(id, clockInTime, clockOutTime string, projectID *string) error {
	payload := map[string]any{
		"clockInTime":  clockInTime,
		"clockOutTime": clockOutTime,
		"projectId":    projectID,
	}
	_, err := e.transport.Patch(fmt.Sprintf("/clock/%s", id), payload)
	return err
}

func (e *ClockEndpoint) Delete(id string) error {
	_, err := e.transport.Delete(fmt.Sprintf("/clock/%s", id))
	return err
}

// Active returns the open session, or nil when the server reports none.
func (e *ClockEndpoint) Active() (*ActiveSessionDTO, error) {
	resp, err := e.transport.Get("/clock/active", nil)
	if err != nil {
		return nil, err
	}

	var session *ActiveSessionDTO
	if err := json.Unmarshal(resp, &session); err != nil {
		return nil, err
	}
	return session, nil
}

func (e *ClockEndpoint) Summary() (*DailySummaryDTO, error) {
	resp, err := e.transport.Get("/clock/summary", nil)
	if err != nil {
		return nil, err
	}

	var summary DailySummaryDTO
	if err := json.Unmarshal(resp, &summary); err != nil {
		return nil, err
	}
	return &summary, nil
}

func (e *ClockEndpoint) History(month string) (*MonthHistoryDTO, error) {
	query := map[string]string{}
	if month != "" {
		query["month"] = month
	}

	resp, err := e.transport.Get("/clock/history", query)
	if err != nil {
		return nil, err
	}

	var history MonthHistoryDTO
	if err := json.Unmarshal(resp, &history); err != nil {
		return nil, err
	}
	return &history, nil
}
