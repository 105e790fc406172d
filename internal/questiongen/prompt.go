package questiongen

import (
	"fmt"
	"strings"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

const systemPrompt = `Sei un esperto redattore di prove INVALSI CBT (Computer Based Testing) per la scuola italiana.

Regole generali:
- Ispirati alle prove ufficiali rilasciate da INVALSI e ai quadri di riferimento del grado richiesto.
- Le domande "multiple_choice" hanno esattamente 4 opzioni (A, B, C, D) e una sola corretta. I distrattori devono essere plausibili e riflettere errori comuni.
- Le domande "matrix" presentano affermazioni (matrixRows) da classificare in colonne (matrixCols, ad esempio "Vero" e "Falso"); matrixCorrectAnswer indica la colonna corretta per ogni riga.
- Compila sempre tutti i campi: per le domande multiple_choice lascia vuoti gli array della matrice, per le domande matrix lascia vuoto options e usa 0 come correctAnswerIndex.
- Fornisci una spiegazione ("explanation") che aiuti lo studente a capire l'errore.
- Per le potenze NON usare mai il simbolo '^': usa esclusivamente gli apici Unicode (2³, x², 10⁻¹, cm³).
- Scrivi le formule in modo leggibile (es. "3x² + 2y").
- Non ripetere le domande dell'elenco "già presenti".`

// subjectGuidance adds framework notes for each subject.
var subjectGuidance = map[quiz.Subject]string{
	quiz.SubjectMatematica: "Includi Numeri, Spazio e figure, Relazioni e funzioni, Dati e previsioni. Le domande non devono richiedere una calcolatrice.",
	quiz.SubjectItaliano:   "Raggruppa le domande attorno a 1 o 2 testi di riferimento nel campo contextText, ripetendo lo stesso testo per ogni domanda collegata. Includi domande di riflessione sulla lingua.",
	quiz.SubjectInglese:    "Livello QCER B1/B2. Alterna Reading (testo in contextText) e Listening (trascrizione in audioScript, senza riportarla nel testo della domanda). Scrivi domande e opzioni in inglese.",
	quiz.SubjectDiritto:    "Verifica la conoscenza della Costituzione e dei principi fondamentali dell'ordinamento italiano.",
}

// buildTestMessage asks for needed questions that complete a test whose
// existing questions are listed in prior.
func buildTestMessage(cfg quiz.Config, needed int, prior []string, max int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Materia: %s\n", cfg.Subject)
	fmt.Fprintf(&b, "Livello scolastico: %s\n", cfg.Grade)
	fmt.Fprintf(&b, "Modalità: %s\n", cfg.Mode)
	fmt.Fprintf(&b, "Numero di domande da generare: %d\n", needed)
	if g, ok := subjectGuidance[cfg.Subject]; ok {
		fmt.Fprintf(&b, "Indicazioni: %s\n", g)
	}
	b.WriteString("Puoi includere qualche domanda di tipo matrix quando l'argomento lo consente.\n")

	b.WriteString("\nDomande già presenti:\n")
	b.WriteString(buildPrior(prior, max))

	return b.String()
}

// buildTextMessage asks for count questions based only on text.
func buildTextMessage(text string, cfg quiz.Config, count int) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Materia di riferimento (per stile e difficoltà): %s\n", cfg.Subject)
	fmt.Fprintf(&b, "Livello scolastico: %s\n", cfg.Grade)
	fmt.Fprintf(&b, "Numero di domande da generare: %d\n", count)
	b.WriteString(`
Regole fondamentali:
1. Domande, opzioni e risposte corrette devono derivare unicamente dal testo fornito, senza conoscenze esterne.
2. Verifica comprensione, analisi e inferenza.
3. Cita nella spiegazione le parti del testo che giustificano la risposta.
4. Usa come topic "Comprensione del testo", "Analisi lessicale" o "Inferenza logica".
5. Lascia vuoti contextText e audioScript: il testo viene mostrato a parte.
`)
	b.WriteString("\nTESTO FORNITO DALL'UTENTE:\n---\n")
	b.WriteString(strings.TrimSpace(text))
	b.WriteString("\n---\n")

	return b.String()
}

// buildPrior formats existing question texts, keeping the last max.
// Returns "Nessuna" when there are none.
func buildPrior(prior []string, max int) string {
	if len(prior) == 0 {
		return "Nessuna"
	}
	if max > 0 && len(prior) > max {
		prior = prior[len(prior)-max:]
	}

	var b strings.Builder
	for i, q := range prior {
		fmt.Fprintf(&b, "%d. %s\n", i+1, q)
	}
	return strings.TrimRight(b.String(), "\n")
}
