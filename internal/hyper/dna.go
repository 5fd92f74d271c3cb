package hyper

import (
	"errors"
	"fmt"
	"math"
)

// DNA gene bytes span this printable range; each gene maps linearly
// onto its parameter's [min, max] interval.
const (
	geneMin = 40
	geneMax = 119
)

// ErrDNALength reports a DNA string whose gene count does not match the
// declared parameter count.
var ErrDNALength = errors.New("dna length does not match hyperparameter count")

// DecodeDNA expands an encoded identifier into one value per declared
// parameter, in declaration order.
func DecodeDNA(specs []Spec, dna string) (map[string]any, error) {
	if len(dna) != len(specs) {
		return nil, fmt.Errorf("%w: %d genes for %d parameters", ErrDNALength, len(dna), len(specs))
	}

	out := make(map[string]any, len(specs))
	for i, spec := range specs {
		gene := dna[i]
		if gene < geneMin || gene > geneMax {
			return nil, fmt.Errorf("gene %d out of range: %q", i, gene)
		}
		ratio := float64(gene-geneMin) / float64(geneMax-geneMin)

		switch spec.Type {
		case TypeCategorical:
			if len(spec.Options) == 0 {
				return nil, fmt.Errorf("categorical parameter %q has no options", spec.Name)
			}
			idx := int(ratio * float64(len(spec.Options)))
			if idx >= len(spec.Options) {
				idx = len(spec.Options) - 1
			}
			out[spec.Name] = spec.Options[idx]
		case TypeInt:
			out[spec.Name] = int(math.Round(snap(spec, ratio)))
		default:
			out[spec.Name] = snap(spec, ratio)
		}
	}
	return out, nil
}

// EncodeDNA is the inverse mapping: it folds one value per declared
// parameter back into a gene string.
func EncodeDNA(specs []Spec, values Values) (string, error) {
	genes := make([]byte, len(specs))
	for i, spec := range specs {
		if spec.Type == TypeCategorical {
			idx := 0
			raw, _ := values.Value(spec.Name)
			for j, opt := range spec.Options {
				if opt == raw {
					idx = j
					break
				}
			}
			denom := float64(len(spec.Options))
			genes[i] = geneMin + byte((float64(idx)+0.5)/denom*float64(geneMax-geneMin))
			continue
		}

		span := spec.Max - spec.Min
		if span <= 0 {
			genes[i] = geneMin
			continue
		}
		ratio := (values.Float(spec.Name) - spec.Min) / span
		ratio = math.Min(1, math.Max(0, ratio))
		genes[i] = geneMin + byte(math.Round(ratio*float64(geneMax-geneMin)))
	}
	return string(genes), nil
}

func snap(spec Spec, ratio float64) float64 {
	value := spec.Min + (spec.Max-spec.Min)*ratio
	if spec.Step > 0 {
		value = spec.Min + math.Round((value-spec.Min)/spec.Step)*spec.Step
		value = math.Min(spec.Max, math.Max(spec.Min, value))
	}
	return value
}
