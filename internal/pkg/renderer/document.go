package renderer

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/yigit/portfoliohub/internal/app/models"
)

// Entry is one line item of a list section
type Entry struct {
	Title    string
	Subtitle string
}

// Document is the template view of a canonical submission.
// Section payloads are free-form, so every field is best effort.
type Document struct {
	StudentID  string
	Name       string
	Role       string
	Email      string
	Contact    string
	PhotoURL   string
	Education  []Entry
	Experience []Entry
	Projects   []Entry
	Skills     []string
	Status     string
	Remark     string
}

// NewDocument extracts the printable fields from a submission. baseURL is
// prepended to stored upload paths so the browser can load them.
func NewDocument(sub *models.Submission, baseURL string) Document {
	doc := Document{
		StudentID: sub.StudentID,
		Status:    string(sub.Status),
		Remark:    sub.Remark,
	}

	profile := object(sub.Data[models.SectionProfile])
	doc.Name = str(profile, "name")
	if doc.Name == "" {
		doc.Name = strings.TrimSpace(str(profile, "firstName") + " " + str(profile, "lastName"))
	}
	if doc.Name == "" {
		doc.Name = sub.StudentID
	}
	doc.Role = firstNonEmpty(str(profile, "role"), str(profile, "designation"))
	doc.Email = str(profile, "email")
	doc.Contact = str(profile, "contact")

	photo := str(profile, "photo")
	if photo == "" {
		photo = sub.Files[models.SectionProfile]["photo"]
	}
	doc.PhotoURL = photoURL(baseURL, photo)

	for _, e := range list(sub.Data[models.SectionEducation]) {
		doc.Education = append(doc.Education, Entry{Title: str(e, "institute"), Subtitle: str(e, "degree")})
	}
	for _, e := range list(sub.Data[models.SectionExperience]) {
		doc.Experience = append(doc.Experience, Entry{Title: str(e, "position"), Subtitle: str(e, "company")})
	}
	for _, e := range list(sub.Data[models.SectionProjects]) {
		doc.Projects = append(doc.Projects, Entry{Title: str(e, "projectTitle"), Subtitle: str(e, "projectType")})
	}

	skills := object(sub.Data[models.SectionSkills])
	for _, key := range []string{"technicalSkills", "programmingLanguages", "toolsFrameworks"} {
		for _, s := range strings.Split(str(skills, key), ",") {
			if s = strings.TrimSpace(s); s != "" {
				doc.Skills = append(doc.Skills, s)
			}
		}
	}
	return doc
}

func object(raw json.RawMessage) map[string]interface{} {
	var m map[string]interface{}
	if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
		return map[string]interface{}{}
	}
	return m
}

// list accepts either an array of objects or a single object
func list(raw json.RawMessage) []map[string]interface{} {
	if len(raw) == 0 {
		return nil
	}
	var arr []map[string]interface{}
	if err := json.Unmarshal(raw, &arr); err == nil {
		return arr
	}
	// Sections are often saved as {"items": [...]} or as one object
	obj := object(raw)
	if items, ok := obj["items"].([]interface{}); ok {
		out := make([]map[string]interface{}, 0, len(items))
		for _, it := range items {
			if m, ok := it.(map[string]interface{}); ok {
				out = append(out, m)
			}
		}
		return out
	}
	if len(obj) == 0 {
		return nil
	}
	return []map[string]interface{}{obj}
}

func str(m map[string]interface{}, key string) string {
	switch v := m[key].(type) {
	case string:
		return strings.TrimSpace(v)
	case float64, bool:
		return fmt.Sprint(v)
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func photoURL(baseURL, photo string) string {
	if photo == "" {
		return ""
	}
	if strings.HasPrefix(photo, "http://") || strings.HasPrefix(photo, "https://") || strings.HasPrefix(photo, "data:") {
		return photo
	}
	p := strings.ReplaceAll(photo, "\\", "/")
	if i := strings.Index(p, "uploads/"); i >= 0 {
		p = p[i:]
	}
	return strings.TrimRight(baseURL, "/") + "/" + strings.TrimLeft(p, "/")
}
