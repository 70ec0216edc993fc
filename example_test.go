package deliverkit_test

import (
	"context"
	"fmt"

	"github.com/optimode/deliverkit"
	"github.com/optimode/deliverkit/internal/mxdns"
	"github.com/optimode/deliverkit/types"
)

// exampleValidator wires a canned resolver so the examples stay
// deterministic and offline. Production callers omit DNS.Resolver and
// get the real miekg/dns-backed one.
func exampleValidator() *deliverkit.Validator {
	r := &fixtureResolver{mx: map[string]mxdns.MXResult{
		"example.com": {Records: []types.MXRecord{{Host: "mx.example.com", Priority: 10}}},
		"example.org": {Records: []types.MXRecord{{Host: "mx.example.org", Priority: 10}}},
		"gmial.com":   {Records: []types.MXRecord{{Host: "mx.gmial.com", Priority: 10}}},
		"tempmail.example": {
			Records: []types.MXRecord{{Host: "mx.tempmail.example", Priority: 10}},
		},
	}}
	v, _ := deliverkit.New(fixtureConfig(r, "tempmail.example"))
	return v
}

func ExampleNew() {
	v := exampleValidator()
	result := v.Validate(context.Background(), "user@example.com", false)
	fmt.Println(result.IsValid, result.DeliverabilityScore, result.ScoreCategory)
	// Output: true 70 Good
}

func ExampleValidator_Validate() {
	v := exampleValidator()

	result := v.Validate(context.Background(), "user@example.com", false)
	fmt.Println(result.IsValid, result.ScoreCategory)

	result = v.Validate(context.Background(), "invalid", false)
	fmt.Println(result.IsValid, result.ScoreCategory)
	// Output:
	// true Good
	// false Invalid
}

func ExampleValidator_Validate_disposable() {
	v := exampleValidator()

	result := v.Validate(context.Background(), "throwaway@tempmail.example", false)
	fmt.Println(result.IsDisposable, result.DeliverabilityScore, result.RiskLevel)
	// Output: true 50 High
}

func ExampleValidator_Validate_typo() {
	v := exampleValidator()

	// A likely typo of a well-known provider populates Suggestion
	// without failing the address.
	result := v.Validate(context.Background(), "user@gmial.com", false)
	fmt.Println(result.IsValid, result.Suggestion)
	// Output: true gmail.com
}

func ExampleValidator_ValidateBatch() {
	v := exampleValidator()
	emails := []string{"alice@example.com", "invalid", "bob@example.org"}

	batch, _ := v.ValidateBatch(context.Background(), emails, false)
	for _, r := range batch.Results {
		fmt.Printf("%-20s valid=%v score=%d\n", r.Email, r.IsValid, r.DeliverabilityScore)
	}
	// Output:
	// alice@example.com    valid=true score=70
	// invalid              valid=false score=0
	// bob@example.org      valid=true score=70
}

func ExampleScore() {
	w := deliverkit.DefaultWeights()
	fmt.Println(deliverkit.Score(w, true, true, false, types.VerdictUnknown))
	fmt.Println(deliverkit.Score(w, true, true, false, types.VerdictExists))
	fmt.Println(deliverkit.Score(w, true, true, false, types.VerdictNotExists))
	// Output:
	// 70
	// 100
	// 40
}

func ExampleCategoryFor() {
	fmt.Println(deliverkit.CategoryFor(100))
	fmt.Println(deliverkit.CategoryFor(70))
	fmt.Println(deliverkit.CategoryFor(40))
	fmt.Println(deliverkit.CategoryFor(0))
	// Output:
	// Excellent
	// Good
	// Poor
	// Invalid
}
