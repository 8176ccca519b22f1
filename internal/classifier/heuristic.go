package classifier

import (
	"strings"
	"unicode"

	"github.com/locascan/locascan/internal/model"
)

// Heuristic is the local fallback language classifier.
// It uses only deterministic, in-process signals: script detection for
// non-Latin text, stop-word overlap against the target and foreign
// language word sets, and diacritic frequency. It has no failure mode and
// always returns a verdict, though confidence may sit near the decision
// threshold when signals are ambiguous.
//
// Design decision: The word lists are biased toward UI vocabulary
// ("save", "cancel", "settings") rather than general prose because the
// snippets this tool classifies are buttons, labels, and menu entries.
// A general-purpose n-gram model would need training data we don't have
// and would perform worse on two-word button labels.
type Heuristic struct {
	// target is the language the UI is expected to display.
	target string

	// foreign is the untranslated language being searched for.
	foreign string

	// targetWords and foreignWords are lowercase stop-word sets for the
	// two configured languages. Unknown language codes yield empty sets;
	// classification then relies on script and diacritic signals alone.
	targetWords  map[string]struct{}
	foreignWords map[string]struct{}

	// targetAccents holds diacritic runes characteristic of the target
	// language, used as a weak signal when no stop words match.
	targetAccents map[rune]struct{}
}

// Heuristic confidence model, following the original scoring scheme:
// a stop-word match starts at the base, longer text and repeated matches
// raise it, and the score never exceeds the cap so a heuristic verdict
// can always be distinguished from a certain one.
const (
	heuristicBase      = 0.7
	heuristicLongBonus = 0.1
	heuristicHitsBonus = 0.1
	heuristicCap       = 0.95

	// heuristicAmbiguous is returned when signals conflict or when only a
	// weak signal (diacritics) is present.
	heuristicAmbiguous = 0.6

	// heuristicUnknown is returned when no signal is present at all.
	// The verdict defaults to the target language: absent evidence, the
	// expected UI language is the least surprising answer.
	heuristicUnknown = 0.5

	// longTextLength is the length above which text earns the long bonus.
	longTextLength = 20

	// strongHitCount is the stop-word hit count that earns the hits bonus.
	strongHitCount = 3
)

// uiStopwords maps ISO 639-1 codes to lowercase words common in product
// UIs for that language. The English list follows the original tool; the
// others were chosen the same way: frequent function words plus the verbs
// and nouns that appear on buttons and menus.
var uiStopwords = map[string][]string{
	"en": {
		"the", "and", "with", "for", "your", "you",
		"is", "are", "on", "in", "at", "by", "from",
		"settings", "profile", "account", "save", "cancel",
		"delete", "create", "edit", "view", "search",
		"new", "dashboard", "sign", "out", "login",
		"logout", "password", "username", "email",
		"please", "enter", "submit", "notifications",
		"messages", "loading", "error", "success",
	},
	"fr": {
		"le", "la", "les", "un", "une", "des", "et", "ou",
		"est", "sont", "avec", "pour", "votre", "vous",
		"de", "du", "au", "aux", "sur", "dans", "par",
		"paramètres", "profil", "compte", "enregistrer", "annuler",
		"supprimer", "créer", "modifier", "afficher", "rechercher",
		"nouveau", "nouvelle", "tableau", "bord", "connexion",
		"déconnexion", "mot", "passe", "utilisateur", "courriel",
		"veuillez", "saisir", "soumettre", "notifications",
		"messages", "chargement", "erreur", "succès",
	},
	"es": {
		"el", "la", "los", "las", "un", "una", "y", "o",
		"es", "son", "con", "para", "su", "usted", "de", "en",
		"ajustes", "perfil", "cuenta", "guardar", "cancelar",
		"eliminar", "crear", "editar", "ver", "buscar",
		"nuevo", "nueva", "contraseña", "usuario", "correo",
		"por", "favor", "introducir", "enviar", "notificaciones",
		"mensajes", "cargando", "error", "éxito",
	},
	"de": {
		"der", "die", "das", "ein", "eine", "und", "oder",
		"ist", "sind", "mit", "für", "ihr", "ihre", "sie",
		"einstellungen", "profil", "konto", "speichern", "abbrechen",
		"löschen", "erstellen", "bearbeiten", "anzeigen", "suchen",
		"neu", "neue", "passwort", "benutzername", "anmelden",
		"abmelden", "bitte", "eingeben", "senden", "benachrichtigungen",
		"nachrichten", "laden", "fehler", "erfolg",
	},
	"it": {
		"il", "lo", "la", "gli", "le", "un", "una", "e", "o",
		"è", "sono", "con", "per", "suo", "tuo", "di", "da",
		"impostazioni", "profilo", "account", "salva", "annulla",
		"elimina", "crea", "modifica", "visualizza", "cerca",
		"nuovo", "nuova", "password", "utente", "accedi",
		"esci", "inserire", "invia", "notifiche",
		"messaggi", "caricamento", "errore", "successo",
	},
	"pt": {
		"o", "a", "os", "as", "um", "uma", "e", "ou",
		"é", "são", "com", "para", "seu", "sua", "de", "em",
		"configurações", "perfil", "conta", "salvar", "cancelar",
		"excluir", "criar", "editar", "visualizar", "pesquisar",
		"novo", "nova", "senha", "usuário", "entrar",
		"sair", "insira", "enviar", "notificações",
		"mensagens", "carregando", "erro", "sucesso",
	},
}

// accentRunes maps language codes to diacritic runes characteristic of
// that language when written in Latin script.
var accentRunes = map[string][]rune{
	"fr": {'é', 'è', 'ê', 'ë', 'à', 'â', 'ç', 'î', 'ï', 'ô', 'û', 'ù', 'œ'},
	"es": {'á', 'é', 'í', 'ó', 'ú', 'ñ', '¿', '¡'},
	"de": {'ä', 'ö', 'ü', 'ß'},
	"it": {'à', 'è', 'é', 'ì', 'ò', 'ù'},
	"pt": {'ã', 'õ', 'á', 'é', 'í', 'ó', 'ú', 'â', 'ê', 'ô', 'ç'},
}

// scriptLanguages maps non-Latin Unicode scripts to the language code the
// heuristic reports when that script dominates the text. Single dominant
// scripts are a strong signal, hence the fixed high confidence.
var scriptLanguages = []struct {
	table *unicode.RangeTable
	lang  string
}{
	{unicode.Cyrillic, "ru"},
	{unicode.Han, "zh"},
	{unicode.Hiragana, "ja"},
	{unicode.Katakana, "ja"},
	{unicode.Hangul, "ko"},
	{unicode.Arabic, "ar"},
	{unicode.Hebrew, "he"},
	{unicode.Greek, "el"},
	{unicode.Thai, "th"},
	{unicode.Devanagari, "hi"},
}

// scriptConfidence is the confidence assigned to verdicts based on a
// dominant non-Latin script.
const scriptConfidence = 0.9

// NewHeuristic creates a heuristic classifier for the given target and
// foreign language codes. Codes without a built-in word set still work;
// they just contribute no stop-word signal.
func NewHeuristic(target, foreign string) *Heuristic {
	h := &Heuristic{
		target:        target,
		foreign:       foreign,
		targetWords:   wordSet(target),
		foreignWords:  wordSet(foreign),
		targetAccents: make(map[rune]struct{}),
	}

	for _, r := range accentRunes[target] {
		h.targetAccents[r] = struct{}{}
	}

	return h
}

// wordSet builds the lookup set for a language code.
func wordSet(lang string) map[string]struct{} {
	words := uiStopwords[lang]
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// Detect classifies one snippet of text. It always returns a valid
// verdict with source = heuristic.
func (h *Heuristic) Detect(text string) model.LanguageVerdict {
	if lang, ok := dominantScript(text); ok {
		return model.LanguageVerdict{
			Language:   lang,
			Confidence: scriptConfidence,
			Source:     model.SourceHeuristic,
		}
	}

	foreignHits, targetHits := h.countHits(text)

	switch {
	case foreignHits > targetHits:
		return model.LanguageVerdict{
			Language:   h.foreign,
			Confidence: heuristicScore(text, foreignHits),
			Source:     model.SourceHeuristic,
		}
	case targetHits > foreignHits:
		return model.LanguageVerdict{
			Language:   h.target,
			Confidence: heuristicScore(text, targetHits),
			Source:     model.SourceHeuristic,
		}
	case foreignHits > 0:
		// Equal non-zero hit counts: the text mixes both vocabularies.
		return model.LanguageVerdict{
			Language:   h.target,
			Confidence: heuristicAmbiguous,
			Source:     model.SourceHeuristic,
		}
	}

	// No stop-word signal. Diacritics are a weak hint for the target
	// language; otherwise assume the expected UI language at low
	// confidence.
	if h.hasTargetAccents(text) {
		return model.LanguageVerdict{
			Language:   h.target,
			Confidence: heuristicAmbiguous,
			Source:     model.SourceHeuristic,
		}
	}

	return model.LanguageVerdict{
		Language:   h.target,
		Confidence: heuristicUnknown,
		Source:     model.SourceHeuristic,
	}
}

// countHits counts whole-word stop-word matches for both languages.
func (h *Heuristic) countHits(text string) (foreign, target int) {
	for _, word := range tokenize(text) {
		if _, ok := h.foreignWords[word]; ok {
			foreign++
		}
		if _, ok := h.targetWords[word]; ok {
			target++
		}
	}
	return foreign, target
}

// hasTargetAccents reports whether the text contains a diacritic rune
// characteristic of the target language.
func (h *Heuristic) hasTargetAccents(text string) bool {
	for _, r := range strings.ToLower(text) {
		if _, ok := h.targetAccents[r]; ok {
			return true
		}
	}
	return false
}

// heuristicScore computes the confidence for a stop-word based verdict.
func heuristicScore(text string, hits int) float64 {
	score := heuristicBase
	if len(text) > longTextLength {
		score += heuristicLongBonus
	}
	if hits >= strongHitCount {
		score += heuristicHitsBonus
	}
	if score > heuristicCap {
		score = heuristicCap
	}
	return score
}

// tokenize splits text into lowercase words.
func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r)
	})
}

// dominantScript returns the language associated with a non-Latin script
// covering the majority of the text's letters.
func dominantScript(text string) (string, bool) {
	letters := 0
	counts := make(map[string]int)

	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		for _, s := range scriptLanguages {
			if unicode.Is(s.table, r) {
				counts[s.lang]++
				break
			}
		}
	}

	if letters == 0 {
		return "", false
	}

	for lang, count := range counts {
		if count*2 > letters {
			return lang, true
		}
	}
	return "", false
}
