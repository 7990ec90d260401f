package reconcile

import (
	"fmt"

	"explainer/internal/language"
)

// promptTemplate holds the correction instructions for one caption language.
// The user template takes the original script and the draft SRT, in that order.
type promptTemplate struct {
	system string
	user   string
}

var promptTemplates = map[language.Code]promptTemplate{
	language.English: {
		system: "You proofread English subtitle files produced by automatic speech recognition. " +
			"You fix wording only and never touch numbering or timing.",
		user: `The subtitles below were transcribed from a narration of the original script. Correct transcription errors in the subtitle text (typos, nonsense words, mis-heard words, wrong spelling of names) so that it matches the original script.

Rules:
- Keep every subtitle index exactly as it is.
- Keep every time code line exactly as it is, character for character.
- Keep the same number of subtitle blocks, in the same order. Do not merge or split blocks.
- Only change the text lines.
- Respond with the corrected subtitles only, in the same format, without commentary or code fences.

Original script:
%[1]s

Subtitles:
%[2]s`,
	},
	language.Spanish: {
		system: "Corriges archivos de subtítulos en español generados por reconocimiento automático de voz. " +
			"Solo corriges el texto y nunca tocas la numeración ni los tiempos.",
		user: `Los subtítulos siguientes se transcribieron a partir de la locución del guion original. Corrige los errores de transcripción del texto (erratas, palabras sin sentido, palabras mal oídas, nombres mal escritos) para que coincida con el guion original.

Reglas:
- Mantén cada número de subtítulo exactamente igual.
- Mantén cada línea de tiempos exactamente igual, carácter por carácter.
- Mantén el mismo número de bloques, en el mismo orden. No unas ni dividas bloques.
- Cambia solo las líneas de texto.
- Responde únicamente con los subtítulos corregidos, en el mismo formato, sin comentarios ni bloques de código.

Guion original:
%[1]s

Subtítulos:
%[2]s`,
	},
	language.French: {
		system: "Tu relis des fichiers de sous-titres en français produits par reconnaissance automatique de la parole. " +
			"Tu corriges uniquement le texte et ne touches jamais à la numérotation ni aux horodatages.",
		user: `Les sous-titres ci-dessous ont été transcrits à partir de la narration du texte original. Corrige les erreurs de transcription du texte (fautes de frappe, mots absurdes, mots mal entendus, noms mal orthographiés) pour qu'il corresponde au texte original.

Règles :
- Garde chaque numéro de sous-titre tel quel.
- Garde chaque ligne d'horodatage telle quelle, caractère par caractère.
- Garde le même nombre de blocs, dans le même ordre. Ne fusionne ni ne divise aucun bloc.
- Modifie uniquement les lignes de texte.
- Réponds uniquement avec les sous-titres corrigés, dans le même format, sans commentaire ni bloc de code.

Texte original :
%[1]s

Sous-titres :
%[2]s`,
	},
	language.Portuguese: {
		system: "Você revisa arquivos de legendas em português gerados por reconhecimento automático de fala. " +
			"Você corrige apenas o texto e nunca altera a numeração nem os tempos.",
		user: `As legendas abaixo foram transcritas a partir da narração do roteiro original. Corrija os erros de transcrição do texto (erros de digitação, palavras sem sentido, palavras mal ouvidas, nomes escritos errado) para que ele corresponda ao roteiro original.

Regras:
- Mantenha cada número de legenda exatamente como está.
- Mantenha cada linha de tempo exatamente como está, caractere por caractere.
- Mantenha o mesmo número de blocos, na mesma ordem. Não junte nem divida blocos.
- Altere apenas as linhas de texto.
- Responda apenas com as legendas corrigidas, no mesmo formato, sem comentários nem blocos de código.

Roteiro original:
%[1]s

Legendas:
%[2]s`,
	},
}

func buildPrompts(lang language.Code, scriptText, draft string) (string, string) {
	tmpl, ok := promptTemplates[lang]
	if !ok {
		tmpl = promptTemplates[language.English]
	}
	return tmpl.system, fmt.Sprintf(tmpl.user, scriptText, draft)
}
