package gemini

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sezerdalgic/podcastmafya/internal/model"
)

// buildScriptPrompt assembles the showrunner prompt: program format,
// character profiles with relationship memory, and mode-specific task
// instructions.
func buildScriptPrompt(req ScriptRequest) string {
	var profiles []string
	for _, c := range req.Characters {
		rels, _ := json.Marshal(c.Memory.Relationships)
		profiles = append(profiles, fmt.Sprintf(
			"ID: %s\nNAME: %s\nVOICE: %s\nCORE PERSONALITY: %s\nMEMORY DEPTH: %s\nRELATIONSHIPS: %s",
			c.ID, c.Name, c.Voice, c.CorePersonality, c.MemoryDepth, rels))
	}

	var task string
	switch req.InputType {
	case model.InputManual:
		hostID := ""
		if len(req.Characters) > 0 {
			hostID = req.Characters[0].ID
		}
		task = fmt.Sprintf(`MODE: MANUAL SCRIPT PARSING
The user has provided a raw text script below.
YOUR GOAL: Parse this text into the required JSON format.

RULES:
1. DO NOT generate new creative content. Stick to the user's text.
2. Identify speaker names in the text and map them to the closest Character ID provided above.
3. If a line has no speaker, assign it to the character with ID: %q (Host).
4. Fix minor grammar or formatting issues, but keep the meaning identical.
5. Extract a suitable Title and Summary from the context of the dialogue.

USER RAW INPUT:
"""
%s
"""`, hostID, req.Topic)

	case model.InputNews:
		task = fmt.Sprintf(`MODE: NEWS ANALYSIS & DISCUSSION
The user provided this News URL: %s

YOUR GOAL: Simulate a podcast episode discussing this specific news item.

RULES:
1. Analyze the URL text to infer the topic.
2. Use your internal knowledge to generate a plausible, factual discussion about this likely topic.
3. The Host should introduce the news item clearly.
4. The Co-Host/Guest should react based on their personality.
5. Do not hallucinate a URL if you don't know it, just discuss the topic inferred from the link string.`, req.Topic)
		if req.NewsContent != "" {
			task += "\n\nARTICLE TEXT:\n" + req.NewsContent
		}

	default:
		task = fmt.Sprintf(`MODE: CREATIVE GENERATION
Topic: %s

YOUR GOAL: Write an entertaining, original podcast script about this topic.

RULES:
1. Start with the Host's signature opening (based on Program Format).
2. Ensure characters argue/discuss based on their defined Personalities.
3. Include a clear conclusion.`, req.Topic)
	}

	return fmt.Sprintf(`SYSTEM CONTEXT:
You are the showrunner and scriptwriter for the podcast program %q.

PROGRAM FORMAT RULES:
%s

AVAILABLE CHARACTERS:
%s

%s

OUTPUT FORMAT:
Return valid JSON ONLY. No markdown blocks.
Structure:
{
  "title": "Episode Title",
  "summary": "Short episode summary (max 2 sentences)",
  "lines": [
    { "characterId": "character_id_here", "text": "Spoken line here..." }
  ]
}`, req.Program.Name, req.Program.Format, strings.Join(profiles, "\n---\n"), task)
}
