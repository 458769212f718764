package main

import (
	"bufio"
	"fmt"
	"io"
	"math/rand/v2"
	"strconv"
	"strings"

	"quizduel/internal/domain"
)

// playRound asks every question on out and reads numbered answers from in. It returns
// the number of correct answers.
func playRound(questions domain.QuestionSet, in io.Reader, out io.Writer) (int, error) {
	scanner := bufio.NewScanner(in)
	score := 0

	for i, q := range questions {
		answers := q.Answers
		if len(answers) == 0 {
			answers = shuffledAnswers(q)
		}

		fmt.Fprintf(out, "\n[%d/%d] %s\n", i+1, len(questions), q.Question)
		for j, a := range answers {
			fmt.Fprintf(out, "  %d) %s\n", j+1, a)
		}

		choice, err := readChoice(scanner, out, len(answers))
		if err != nil {
			return score, err
		}
		if answers[choice-1] == q.CorrectAnswer {
			score++
			fmt.Fprintln(out, "Correct!")
		} else {
			fmt.Fprintf(out, "Wrong, the answer was %s\n", q.CorrectAnswer)
		}
	}
	return score, nil
}

func readChoice(scanner *bufio.Scanner, out io.Writer, n int) (int, error) {
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			if err := scanner.Err(); err != nil {
				return 0, err
			}
			return 0, io.ErrUnexpectedEOF
		}
		choice, err := strconv.Atoi(strings.TrimSpace(scanner.Text()))
		if err == nil && choice >= 1 && choice <= n {
			return choice, nil
		}
		fmt.Fprintf(out, "Pick a number between 1 and %d\n", n)
	}
}

func shuffledAnswers(q domain.Question) []string {
	answers := append([]string{q.CorrectAnswer}, q.IncorrectAnswers...)
	rand.Shuffle(len(answers), func(i, j int) { answers[i], answers[j] = answers[j], answers[i] })
	return answers
}
