// seed_catalog.go — standalone script to load a catalog JSON file and seed it via the admin API.
//
// Usage:
//
//	go run scripts/seed_catalog.go -file catalog.json -api http://localhost:8700 -token $SOULCOMPASS_ADMIN_TOKEN
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
)

type seedQuestion struct {
	ID       int    `json:"id"`
	Text     string `json:"text"`
	Category string `json:"category"`
}

type seedProfile struct {
	ID                int      `json:"id"`
	Name              string   `json:"name"`
	Description       string   `json:"description,omitempty"`
	Refuge            string   `json:"refuge,omitempty"`
	BiblicalCharacter string   `json:"biblical_character,omitempty"`
	Exaltation        string   `json:"exaltation,omitempty"`
	Formation         string   `json:"formation,omitempty"`
	CommonPains       []string `json:"common_pains,omitempty"`
	ExitSteps         []string `json:"exit_steps,omitempty"`
	PropheticSummary  string   `json:"prophetic_summary,omitempty"`
}

type seedWeight struct {
	QuestionID int     `json:"question_id"`
	ProfileID  int     `json:"profile_id"`
	Weight     float64 `json:"weight"`
}

type seedHierarchy struct {
	ProfileID int    `json:"profile_id"`
	Position  int    `json:"hierarchy_position"`
	Dominance string `json:"dominance_level"`
}

type seedPayload struct {
	Questions []seedQuestion  `json:"questions"`
	Profiles  []seedProfile   `json:"profiles"`
	Weights   []seedWeight    `json:"weights"`
	Hierarchy []seedHierarchy `json:"hierarchy"`
}

func main() {
	filePath := flag.String("file", "catalog.json", "path to catalog JSON file")
	apiURL := flag.String("api", "http://localhost:8700", "API base URL")
	token := flag.String("token", os.Getenv("SOULCOMPASS_ADMIN_TOKEN"), "admin bearer token")
	dryRun := flag.Bool("dry-run", false, "print counts without posting")
	flag.Parse()

	raw, err := os.ReadFile(*filePath)
	if err != nil {
		log.Fatalf("read catalog file: %v", err)
	}

	var payload seedPayload
	if err := json.Unmarshal(raw, &payload); err != nil {
		log.Fatalf("parse catalog file: %v", err)
	}

	log.Printf("parsed %d questions, %d profiles, %d weights, %d hierarchy entries from %s",
		len(payload.Questions), len(payload.Profiles), len(payload.Weights), len(payload.Hierarchy), *filePath)

	if len(payload.Questions) == 0 || len(payload.Profiles) == 0 {
		log.Fatalf("catalog file must contain at least one question and one profile")
	}

	if *dryRun {
		for i, q := range payload.Questions {
			fmt.Printf("[Q%d] %s (category=%s)\n", i+1, q.Text, q.Category)
		}
		for i, p := range payload.Profiles {
			fmt.Printf("[P%d] %s (weights=%d)\n", i+1, p.Name, countWeights(payload.Weights, p.ID))
		}
		return
	}

	body, _ := json.Marshal(payload)
	req, err := http.NewRequest("POST", *apiURL+"/api/v1/admin/catalog/seed", bytes.NewReader(body))
	if err != nil {
		log.Fatalf("build request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if *token != "" {
		req.Header.Set("Authorization", "Bearer "+*token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		log.Fatalf("post seed: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		log.Fatalf("seed failed: status %d: %s", resp.StatusCode, msg)
	}

	var result map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Fatalf("decode response: %v", err)
	}
	log.Printf("done: %v", result)
}

func countWeights(weights []seedWeight, profileID int) int {
	n := 0
	for _, w := range weights {
		if w.ProfileID == profileID {
			n++
		}
	}
	return n
}
