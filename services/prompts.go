package services

import (
	"fmt"
	"strings"
)

// System prompts for each capability.
const (
	researchSystem = "You are an expert technical researcher specializing in software development topics. " +
		"You provide accurate, well-sourced findings with confidence ratings."

	outlineSystem = "You are an experienced technical content strategist. " +
		"You design blog post outlines that are engaging, logically structured and SEO-aware."

	draftSystem = "You are a skilled technical writer. You write clear, engaging blog posts in markdown " +
		"with working code examples where appropriate."

	reviewSystem = "You are a senior technical editor reviewing blog content for quality and accuracy."

	seoSystem = "You are an SEO specialist for developer-focused content. " +
		"You optimize posts for search visibility without hurting readability."

	explainSystem = "You are a patient teacher who explains programming concepts with concrete examples and analogies."
)

func researchPrompt(topic, niche, depth, context string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Research the topic: %s\n", topic)
	if niche != "" {
		fmt.Fprintf(&b, "Focus area: %s\n", niche)
	}
	if depth != "" {
		fmt.Fprintf(&b, "Research depth: %s\n", depth)
	}
	if context != "" {
		fmt.Fprintf(&b, "\nRelevant background from the knowledge base:\n%s\n", context)
	}
	b.WriteString(`
Provide a JSON object with:
- "summary": a short overview of the topic
- "findings": array of {"title", "content", "confidence" (0-1), "source"}
- "key_concepts": array of strings
- "best_practices": array of strings
- "common_challenges": array of strings
- "recommended_resources": array of strings`)
	return b.String()
}

func outlinePrompt(topic, audience string, wordCount int, findingsJSON string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Create a blog post outline for: %s\n", topic)
	fmt.Fprintf(&b, "Target audience: %s\n", audience)
	fmt.Fprintf(&b, "Target length: %d words\n", wordCount)
	if findingsJSON != "" {
		fmt.Fprintf(&b, "\nResearch findings to draw on:\n%s\n", findingsJSON)
	}
	b.WriteString(`
Provide a JSON object with:
- "title": a compelling post title
- "hook": an opening hook sentence
- "sections": array of {"title", "points" (array of strings), "has_code_example" (bool)}
- "seo_suggestions": {"keywords" (array), "meta_description"}
- "estimated_words": integer`)
	return b.String()
}

func draftPrompt(outlineJSON, tone string, wordCount int, hasCode bool, feedback string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Write a complete blog post in markdown following this outline:\n%s\n\n", outlineJSON)
	fmt.Fprintf(&b, "Tone: %s\n", tone)
	fmt.Fprintf(&b, "Target length: %d words\n", wordCount)
	if hasCode {
		b.WriteString("Include working code examples in fenced code blocks.\n")
	}
	if feedback != "" {
		fmt.Fprintf(&b, "\nThis is a revision. Address the following review feedback:\n%s\n", feedback)
	}
	b.WriteString("\nStart with a level-1 markdown heading for the title. Write the full post, not a summary.")
	return b.String()
}

func reviewPrompt(title, topic, audience, content string) string {
	return fmt.Sprintf(`Review the following blog post for quality.

Title: %s
Topic: %s
Target audience: %s

%s

Evaluate whether the content is accurate and well structured, matches the
target audience level, and whether the tone fits.

Provide a JSON object with:
- "quality_score": number from 1 to 10
- "needs_revision": boolean, true when the score is below publishable quality
- "feedback": specific, actionable feedback for the writer
- "strengths": array of strings
- "weaknesses": array of strings`, title, topic, audience, content)
}

func seoPrompt(title, content string, keywords []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Optimize the following blog post for search engines.\n\nTitle: %s\n", title)
	if len(keywords) > 0 {
		fmt.Fprintf(&b, "Suggested keywords: %s\n", strings.Join(keywords, ", "))
	}
	fmt.Fprintf(&b, "\n%s\n", content)
	b.WriteString(`
Provide a JSON object with:
- "optimized_content": the full post with SEO improvements applied
- "keywords": array of target keywords
- "meta_description": under 160 characters
- "title_suggestions": array of alternative titles
- "suggestions": array of {"type", "message", "priority"}`)
	return b.String()
}

func explainPrompt(concept, mode string) string {
	return fmt.Sprintf(`Explain the concept: %s
Explanation style: %s

Provide a JSON object with:
- "explanation": a clear explanation
- "examples": array of concrete examples
- "analogies": array of helpful analogies`, concept, mode)
}
