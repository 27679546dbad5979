package api

import (
	"fmt"
	"strings"
)

// Request limits for skill payloads.
const (
	maxSkillNameLength   = 100
	maxDescriptionLength = 1000
	maxContentBytes      = 1 << 20
	maxTagCount          = 20
	maxTagLength         = 50

	forbiddenNameChars = `/\:*?"<>|`
)

// CreateSkillRequest is the POST /api/skills payload.
type CreateSkillRequest struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags,omitempty"`
	Content     string   `json:"content"`
}

// UpdateSkillRequest is the PUT /api/skills/{name} payload. Nil fields
// are left unchanged.
type UpdateSkillRequest struct {
	Description *string   `json:"description,omitempty"`
	Tags        *[]string `json:"tags,omitempty"`
	Content     *string   `json:"content,omitempty"`
}

// validateSkillName rejects names that could escape the skills root or
// break on common filesystems.
func validateSkillName(name string) error {
	if name == "" {
		return fmt.Errorf("name must not be empty")
	}
	if len(name) > maxSkillNameLength {
		return fmt.Errorf("name must be at most %d characters", maxSkillNameLength)
	}
	if strings.HasPrefix(name, ".") {
		return fmt.Errorf("name must not start with a dot")
	}
	if idx := strings.IndexAny(name, forbiddenNameChars); idx >= 0 {
		return fmt.Errorf("name must not contain %q", name[idx])
	}
	return nil
}

func validateDescription(description string) error {
	if len(description) > maxDescriptionLength {
		return fmt.Errorf("description must be at most %d characters", maxDescriptionLength)
	}
	return nil
}

func validateContent(content string) error {
	if len(content) > maxContentBytes {
		return fmt.Errorf("content must be at most %d bytes", maxContentBytes)
	}
	return nil
}

func validateTags(tags []string) error {
	if len(tags) > maxTagCount {
		return fmt.Errorf("at most %d tags allowed", maxTagCount)
	}
	for _, tag := range tags {
		if tag == "" {
			return fmt.Errorf("tags must not be empty")
		}
		if len(tag) > maxTagLength {
			return fmt.Errorf("tag %q exceeds %d characters", tag, maxTagLength)
		}
	}
	return nil
}

// Validate checks a creation request against the request limits.
func (r *CreateSkillRequest) Validate() error {
	if err := validateSkillName(r.Name); err != nil {
		return err
	}
	if r.Description == "" {
		return fmt.Errorf("description must not be empty")
	}
	if err := validateDescription(r.Description); err != nil {
		return err
	}
	if err := validateContent(r.Content); err != nil {
		return err
	}
	return validateTags(r.Tags)
}

// Validate checks an update request against the request limits.
func (r *UpdateSkillRequest) Validate() error {
	if r.Description == nil && r.Tags == nil && r.Content == nil {
		return fmt.Errorf("nothing to update")
	}
	if r.Description != nil {
		if *r.Description == "" {
			return fmt.Errorf("description must not be empty")
		}
		if err := validateDescription(*r.Description); err != nil {
			return err
		}
	}
	if r.Content != nil {
		if err := validateContent(*r.Content); err != nil {
			return err
		}
	}
	if r.Tags != nil {
		return validateTags(*r.Tags)
	}
	return nil
}
