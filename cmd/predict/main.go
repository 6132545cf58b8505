package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v2"

	"fightnet/fighter"
	"fightnet/ml"
)

// Matchup is the YAML input: two fighters, A first.
type Matchup struct {
	FighterA fighter.Profile `yaml:"fighter_a"`
	FighterB fighter.Profile `yaml:"fighter_b"`
}

func main() {
	input := flag.String("matchup", "matchup.yaml", "YAML file with fighter_a and fighter_b")
	roster := flag.String("roster", "", "fighter list in the boxing data API JSON shape; replaces -matchup")
	nameA := flag.String("a", "", "fighter A name in -roster (default first entry)")
	nameB := flag.String("b", "", "fighter B name in -roster (default second entry)")
	endpoint := flag.String("url", "http://127.0.0.1:8000/predict", "prediction endpoint")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	lang := flag.String("lang", "en", "output language tag")
	flag.Parse()

	var matchup *Matchup
	var err error
	if *roster != "" {
		matchup, err = loadRoster(*roster, *nameA, *nameB)
	} else {
		matchup, err = loadMatchup(*input)
	}
	if err != nil {
		log.Fatalf("failed to load matchup: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pred, err := requestPrediction(ctx, http.DefaultClient, *endpoint, fighter.Pair(matchup.FighterA, matchup.FighterB))
	if err != nil {
		log.Fatalf("prediction failed: %v", err)
	}

	tag, err := language.Parse(*lang)
	if err != nil {
		tag = language.English
	}
	printPrediction(os.Stdout, tag, matchup, pred)
}

func loadMatchup(path string) (*Matchup, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var m Matchup
	if err := yaml.NewDecoder(file).Decode(&m); err != nil {
		return nil, err
	}
	return &m, nil
}

func loadRoster(path, nameA, nameB string) (*Matchup, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	list, err := fighter.DecodeAPIList(file)
	if err != nil {
		return nil, err
	}
	a, b, err := fighter.Select(list, nameA, nameB)
	if err != nil {
		return nil, err
	}
	return &Matchup{FighterA: a, FighterB: b}, nil
}

func requestPrediction(ctx context.Context, client *http.Client, url string, features []float64) (ml.Prediction, error) {
	body, err := json.Marshal(map[string][]float64{"features": features})
	if err != nil {
		return ml.Prediction{}, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return ml.Prediction{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return ml.Prediction{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return ml.Prediction{}, fmt.Errorf("prediction request failed: %d %s", resp.StatusCode, bytes.TrimSpace(msg))
	}

	var pred ml.Prediction
	if err := json.NewDecoder(resp.Body).Decode(&pred); err != nil {
		return ml.Prediction{}, fmt.Errorf("decode prediction: %w", err)
	}
	return pred, nil
}

func printPrediction(w io.Writer, tag language.Tag, m *Matchup, pred ml.Prediction) {
	p := message.NewPrinter(tag)
	p.Fprintf(w, "%s: %.1f%%\n", displayName(m.FighterA.Name, "Fighter A"), pred.FighterA)
	p.Fprintf(w, "%s: %.1f%%\n", displayName(m.FighterB.Name, "Fighter B"), pred.FighterB)
}

func displayName(name, fallback string) string {
	if name == "" {
		return fallback
	}
	return name
}
