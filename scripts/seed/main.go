// Command seed populates a running instance with sample roster,
// attendance and academic data through the public HTTP API.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

type seedStudent struct {
	Name    string `json:"name"`
	IndexNo string `json:"studentId"`
	Class   string `json:"class"`
	Contact string `json:"contact,omitempty"`
}

type seedRecord struct {
	Type             string `json:"type"`
	Subject          string `json:"subject"`
	Term             string `json:"term"`
	Marks            int    `json:"marks"`
	AssignmentNumber int    `json:"assignmentNumber,omitempty"`
}

var sampleStudents = []seedStudent{
	{Name: "Kasun Perera", IndexNo: "ST001", Class: "10-A", Contact: "0771234501"},
	{Name: "Nimali Silva", IndexNo: "ST002", Class: "10-A", Contact: "0771234502"},
	{Name: "Tharindu Fernando", IndexNo: "ST003", Class: "10-A"},
	{Name: "Ishara Jayawardena", IndexNo: "ST004", Class: "10-B", Contact: "0771234504"},
	{Name: "Dilani Wickramasinghe", IndexNo: "ST005", Class: "10-B"},
}

var sampleRecords = []seedRecord{
	{Type: "assignment", Subject: "Maths", Term: "first", Marks: 17, AssignmentNumber: 1},
	{Type: "assignment", Subject: "Maths", Term: "first", Marks: 14, AssignmentNumber: 2},
	{Type: "termtest", Subject: "Maths", Term: "first", Marks: 68},
}

func main() {
	var (
		baseURL  string
		username string
		password string
		subject  string
		timeout  time.Duration
	)

	flag.StringVar(&baseURL, "base", "http://localhost:8080/api/v1", "API base URL")
	flag.StringVar(&username, "username", "teacher", "seed account username")
	flag.StringVar(&password, "password", "teacher123", "seed account password")
	flag.StringVar(&subject, "subject", "Maths", "seed account subject")
	flag.DurationVar(&timeout, "timeout", 10*time.Second, "HTTP client timeout")
	flag.Parse()

	client := &http.Client{Timeout: timeout}

	token, err := authenticate(client, baseURL, username, password, subject)
	if err != nil {
		log.Fatalf("authentication failed: %v", err)
	}

	var studentIDs []string
	for _, s := range sampleStudents {
		id, err := createStudent(client, baseURL, token, s)
		if err != nil {
			log.Printf("skip student %s: %v", s.IndexNo, err)
			continue
		}
		studentIDs = append(studentIDs, id)
		log.Printf("created student %s (%s)", s.Name, id)
	}

	for i, id := range studentIDs {
		// Alternate statuses over the last five weekdays.
		for d := 0; d < 5; d++ {
			status := "present"
			if (i+d)%4 == 0 {
				status = "absent"
			}
			date := time.Now().AddDate(0, 0, -d).Format("2006-01-02")
			if err := markAttendance(client, baseURL, token, id, date, status); err != nil {
				log.Printf("attendance %s %s: %v", id, date, err)
			}
		}

		for _, r := range sampleRecords {
			rec := r
			rec.Marks = clampMarks(rec.Type, rec.Marks-i)
			if err := createRecord(client, baseURL, token, id, rec); err != nil {
				log.Printf("record %s: %v", id, err)
			}
		}
	}

	log.Printf("seed complete: %d students", len(studentIDs))
}

func clampMarks(typ string, marks int) int {
	if marks < 0 {
		return 0
	}
	if typ == "assignment" && marks > 20 {
		return 20
	}
	if typ == "termtest" && marks > 100 {
		return 100
	}
	return marks
}

func authenticate(client *http.Client, baseURL, username, password, subject string) (string, error) {
	signup := map[string]string{"username": username, "password": password, "subject": subject}
	// Signup may 409 on reruns; login is the source of truth.
	_, _ = postJSON(client, baseURL+"/auth/signup", "", signup)

	body, err := postJSON(client, baseURL+"/auth/login", "", map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return "", err
	}

	var parsed struct {
		Data struct {
			AccessToken string `json:"access_token"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	if parsed.Data.AccessToken == "" {
		return "", fmt.Errorf("login response missing token")
	}
	return parsed.Data.AccessToken, nil
}

func createStudent(client *http.Client, baseURL, token string, s seedStudent) (string, error) {
	body, err := postJSON(client, baseURL+"/students", token, s)
	if err != nil {
		return "", err
	}
	var parsed struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", err
	}
	return parsed.Data.ID, nil
}

func markAttendance(client *http.Client, baseURL, token, studentID, date, status string) error {
	_, err := postJSON(client, baseURL+"/attendance", token, map[string]string{
		"date":      date,
		"studentId": studentID,
		"status":    status,
	})
	return err
}

func createRecord(client *http.Client, baseURL, token, studentID string, r seedRecord) error {
	payload := map[string]any{
		"studentId": studentID,
		"type":      r.Type,
		"subject":   r.Subject,
		"term":      r.Term,
		"marks":     r.Marks,
	}
	if r.AssignmentNumber > 0 {
		payload["assignmentNumber"] = r.AssignmentNumber
	}
	_, err := postJSON(client, baseURL+"/academics", token, payload)
	return err
}

func postJSON(client *http.Client, url, token string, payload any) ([]byte, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequest(http.MethodPost, url, bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusBadRequest {
		return body, fmt.Errorf("%s returned %d: %s", url, resp.StatusCode, bytes.TrimSpace(body))
	}
	return body, nil
}
