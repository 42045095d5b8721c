package domain

type Project struct {
	Name            string `json:"project_name"`
	Description     string `json:"project_description"`
	LastTimeUpdated string `json:"last_time_updated,omitempty"`
}
