package script

import (
	"fmt"

	"explainer/internal/language"
)

// promptTemplate holds the instructions for one narration language. The user
// template takes the word target and the study material, in that order.
type promptTemplate struct {
	system string
	user   string
}

var promptTemplates = map[language.Code]promptTemplate{
	language.English: {
		system: "You are an enthusiastic teacher who writes voice-over scripts for short explainer videos. " +
			"You always write in English, in plain spoken prose meant to be read aloud.",
		user: `Write a voice-over script in English of about %[1]d words that explains the study material below to a student.

Rules:
- Never use numeral characters. Spell out every number in words, including years: "1789" becomes "seventeen eighty-nine".
- Plain prose only: no titles, headings, lists, markdown, emoji, or stage directions.
- Open with a hook, explain the key ideas in order, and close with a one-sentence recap.
- Respond with the script text only.

Study material:
%[2]s`,
	},
	language.Spanish: {
		system: "Eres un profesor entusiasta que escribe guiones de locución para vídeos explicativos cortos. " +
			"Escribes siempre en español, en prosa hablada y sencilla pensada para leerse en voz alta.",
		user: `Escribe un guion de locución en español de unas %[1]d palabras que explique a un estudiante el material de estudio siguiente.

Reglas:
- Nunca uses cifras. Escribe todos los números con palabras, incluidos los años: "1789" se escribe "mil setecientos ochenta y nueve".
- Solo prosa: sin títulos, encabezados, listas, markdown, emojis ni acotaciones.
- Empieza con un gancho, explica las ideas clave en orden y termina con un resumen de una frase.
- Responde únicamente con el texto del guion.

Material de estudio:
%[2]s`,
	},
	language.French: {
		system: "Tu es un professeur enthousiaste qui écrit des textes de voix off pour de courtes vidéos explicatives. " +
			"Tu écris toujours en français, dans une prose orale simple destinée à être lue à voix haute.",
		user: `Écris un texte de voix off en français d'environ %[1]d mots qui explique à un élève le support d'étude ci-dessous.

Règles :
- N'utilise jamais de chiffres. Écris tous les nombres en toutes lettres, y compris les années : "1789" s'écrit "mille sept cent quatre-vingt-neuf".
- Prose uniquement : pas de titres, d'intertitres, de listes, de markdown, d'emojis ni d'indications de mise en scène.
- Commence par une accroche, explique les idées clés dans l'ordre et termine par un résumé d'une phrase.
- Réponds uniquement avec le texte de la voix off.

Support d'étude :
%[2]s`,
	},
	language.Portuguese: {
		system: "Você é um professor entusiasmado que escreve roteiros de narração para vídeos explicativos curtos. " +
			"Você sempre escreve em português, em prosa falada e simples, feita para ser lida em voz alta.",
		user: `Escreva um roteiro de narração em português com cerca de %[1]d palavras que explique a um aluno o material de estudo abaixo.

Regras:
- Nunca use algarismos. Escreva todos os números por extenso, inclusive os anos: "1789" escreve-se "mil setecentos e oitenta e nove".
- Apenas prosa: sem títulos, subtítulos, listas, markdown, emojis ou indicações de cena.
- Comece com um gancho, explique as ideias principais em ordem e termine com um resumo de uma frase.
- Responda apenas com o texto do roteiro.

Material de estudo:
%[2]s`,
	},
}

func buildPrompts(profile language.Profile, sourceText string, targetWords int) (string, string) {
	tmpl, ok := promptTemplates[profile.Code]
	if !ok {
		tmpl = promptTemplates[language.English]
	}
	return tmpl.system, fmt.Sprintf(tmpl.user, targetWords, sourceText)
}
