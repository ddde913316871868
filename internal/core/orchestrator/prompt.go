package orchestrator

import (
	"fmt"

	"github.com/rmullur/medist/internal/models"
)

// Category is the fixed set of conditions the classifier can report.
type Category int

const (
	CategoryUnknown Category = iota
	CategoryAlzheimers
	CategoryBrainTumor
	CategoryDiabeticRetinopathy
)

func ParseCategory(s string) Category {
	switch s {
	case "Alzheimer's Disease":
		return CategoryAlzheimers
	case "Brain Tumor":
		return CategoryBrainTumor
	case "Diabetic Retinopathy":
		return CategoryDiabeticRetinopathy
	default:
		return CategoryUnknown
	}
}

func (c Category) String() string {
	switch c {
	case CategoryAlzheimers:
		return "Alzheimer's Disease"
	case CategoryBrainTumor:
		return "Brain Tumor"
	case CategoryDiabeticRetinopathy:
		return "Diabetic Retinopathy"
	default:
		return "Unknown"
	}
}

const personaInstruction = `You are Medist, a helpful medical assistant AI. Please provide accurate, helpful information about health topics. Don't scare the user by giving too much information. Ask concise follow-up questions, but only until the problem is found; then give a concrete solution.`

const stageTemplate = `You are Medist, a helpful medical assistant AI. The user has uploaded a %s that has been analyzed and classified as "%s" in the category of "%s".

Please provide a detailed but compassionate explanation about:
1. What this condition means
2. Common symptoms associated with this stage
3. General treatment approaches
4. What the patient should do next

Keep your response concise, accurate, and supportive. Do not make definitive diagnoses or replace professional medical advice.`

const tumorTemplate = `You are Medist, a helpful medical assistant AI. The user has uploaded an MRI scan that has been analyzed and the model has %s a potential brain tumor.

Please provide a detailed but compassionate explanation about:
1. What this result means
2. Common symptoms associated with brain tumors
3. General diagnostic and treatment approaches
4. What the patient should do next

Keep your response concise, accurate, and supportive. Do not make definitive diagnoses or replace professional medical advice.`

// TextPrompt prefixes the user's message with the fixed persona instruction.
func TextPrompt(message string) string {
	return personaInstruction + "\n\n" + message
}

// ClassificationPrompt maps a classification result onto its category
// template. The mapping over the recognized set is exhaustive; an
// unrecognized category returns ok=false so the caller can log it and fall
// back to general guidance instead of silently dropping the context.
func ClassificationPrompt(result *models.ClassificationResult) (prompt string, ok bool) {
	switch ParseCategory(result.Category) {
	case CategoryAlzheimers:
		return fmt.Sprintf(stageTemplate, "MRI scan", result.Prediction, result.Category), true
	case CategoryBrainTumor:
		detected := "not detected"
		if result.Prediction == "yes" {
			detected = "detected"
		}
		return fmt.Sprintf(tumorTemplate, detected), true
	case CategoryDiabeticRetinopathy:
		return fmt.Sprintf(stageTemplate, "eye scan", result.Prediction, result.Category), true
	default:
		return "", false
	}
}

// fallbackClassificationPrompt covers categories outside the recognized set:
// general guidance conditioned on the raw labels.
func fallbackClassificationPrompt(result *models.ClassificationResult) string {
	return TextPrompt(fmt.Sprintf(
		"An uploaded medical image was classified as %q in the category %q. Explain in general terms what this could mean and advise the user to consult a medical professional.",
		result.Prediction, result.Category))
}
