package app

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// EstimatePrompt is sent to the vision model with every meal photo.
const EstimatePrompt = `Identify the food in this photo and estimate its calories and protein in grams.
Be conservative: err on the low side by about 15% and round down.
Always give your best guess, even when the photo is unclear.
Respond with only a compact JSON object and nothing else, for example:
{"item": "Chicken salad", "calories": 350, "protein": 28}`

// Estimate is the nutrition guess extracted from a model reply.
type Estimate struct {
	Item     string
	Calories float64
	Protein  float64
}

var leadingNumber = regexp.MustCompile(`^\d+(\.\d+)?`)

// ParseEstimate pulls the first JSON object carrying an "item" out of free
// text. Surrounding prose and code fences are ignored.
func ParseEstimate(text string) (Estimate, error) {
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		var raw map[string]json.RawMessage
		if err := json.NewDecoder(strings.NewReader(text[i:])).Decode(&raw); err != nil {
			continue
		}
		fields := make(map[string]json.RawMessage, len(raw))
		for k, v := range raw {
			fields[strings.ToLower(strings.TrimSpace(k))] = v
		}

		var item string
		if err := json.Unmarshal(fields["item"], &item); err != nil {
			continue
		}
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		return Estimate{
			Item:     item,
			Calories: quantity(fields["calories"]),
			Protein:  quantity(fields["protein"]),
		}, nil
	}
	return Estimate{}, fmt.Errorf("%w: no estimate object in reply", ErrAIParse)
}

// quantity reads a JSON number or numeric string. Anything else, including
// negatives, is 0.
func quantity(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var n float64
	if err := json.Unmarshal(raw, &n); err == nil {
		return nonNegative(n)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return 0
	}
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseFloat(s, 64); err == nil {
		return nonNegative(n)
	}
	// "650 kcal", "30g"
	if m := leadingNumber.FindString(s); m != "" {
		n, _ := strconv.ParseFloat(m, 64)
		return nonNegative(n)
	}
	return 0
}

func nonNegative(n float64) float64 {
	if n < 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}
