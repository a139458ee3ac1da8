package tools

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"unicode"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
)

const textParams = `{
	"type": "object",
	"properties": {
		"text": {"type": "string", "description": "Input text"}
	},
	"required": ["text"]
}`

type textArgs struct {
	Text string `json:"text"`
}

func textTool(name, description string, fn func(string) string) Tool {
	return newTool(name, description, textParams, func(_ context.Context, args textArgs) (string, error) {
		return fn(args.Text), nil
	})
}

// StringTools returns the text manipulation tools.
func StringTools() []Tool {
	return []Tool{
		textTool("reverse_string", "Reverse a string", reverse),
		textTool("count_characters", "Count the characters in a string", func(s string) string {
			return strconv.Itoa(len([]rune(s)))
		}),
		textTool("count_words", "Count the words in a string", func(s string) string {
			return strconv.Itoa(len(strings.Fields(s)))
		}),
		textTool("to_uppercase", "Convert a string to upper case", strings.ToUpper),
		textTool("to_lowercase", "Convert a string to lower case", strings.ToLower),
		textTool("capitalize_words", "Capitalize the first letter of every word", capitalizeWords),
		textTool("remove_whitespace", "Remove leading and trailing whitespace", strings.TrimSpace),
		textTool("is_palindrome", "Check whether a string reads the same backwards, ignoring case and spaces", func(s string) string {
			clean := strings.ReplaceAll(strings.ToLower(s), " ", "")
			return strconv.FormatBool(clean == reverse(clean))
		}),
		newTool("replace_substring", "Replace every occurrence of old with new in text",
			`{"type":"object","properties":{"text":{"type":"string"},"old":{"type":"string"},"new":{"type":"string"}},"required":["text","old","new"]}`,
			func(_ context.Context, args struct {
				Text string `json:"text"`
				Old  string `json:"old"`
				New  string `json:"new"`
			}) (string, error) {
				if args.Old == "" {
					return "", errors.New("old must not be empty")
				}
				return strings.ReplaceAll(args.Text, args.Old, args.New), nil
			}),
		newTool("html_to_markdown", "Convert an HTML fragment to markdown",
			`{"type":"object","properties":{"html":{"type":"string","description":"HTML to convert"}},"required":["html"]}`,
			func(_ context.Context, args struct {
				HTML string `json:"html"`
			}) (string, error) {
				md, err := htmltomarkdown.ConvertString(args.HTML)
				if err != nil {
					return "", err
				}
				return strings.TrimSpace(md), nil
			}),
	}
}

func reverse(s string) string {
	r := []rune(s)
	for i, j := 0, len(r)-1; i < j; i, j = i+1, j-1 {
		r[i], r[j] = r[j], r[i]
	}
	return string(r)
}

// capitalizeWords upper-cases every letter that follows a non-letter and
// lower-cases the rest. Spacing and punctuation are kept.
func capitalizeWords(s string) string {
	r := []rune(s)
	prevLetter := false
	for i, c := range r {
		if prevLetter {
			r[i] = unicode.ToLower(c)
		} else {
			r[i] = unicode.ToUpper(c)
		}
		prevLetter = unicode.IsLetter(c)
	}
	return string(r)
}
