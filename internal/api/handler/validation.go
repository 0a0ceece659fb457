package handler

import (
	"strings"
	"unicode/utf8"

	"github.com/Talin12/DataSage/pkg/apierr"
)

const maxPromptLen = 2000

func validatePrompt(prompt string) *apierr.Error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return apierr.PromptRequired()
	}
	if utf8.RuneCountInString(prompt) > maxPromptLen {
		return apierr.PromptTooLong(maxPromptLen)
	}
	return nil
}

func validateDatasetID(id *int64) *apierr.Error {
	if id == nil {
		return apierr.DatasetIDRequired()
	}
	if *id <= 0 {
		return apierr.InvalidID("dataset")
	}
	return nil
}
