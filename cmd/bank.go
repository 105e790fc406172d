package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/VitoPalumboPodcast/Invalsi/internal/quiz"
)

var bankCmd = &cobra.Command{
	Use:   "bank",
	Short: "Browse the curated question bank",
}

var bankListCmd = &cobra.Command{
	Use:   "list",
	Short: "Count bank questions per subject and grade",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v, os.Stderr)

		bank, err := loadBank(v)
		if err != nil {
			return err
		}

		fmt.Printf("%-12s  %-30s  %9s  %6s\n", "Subject", "Grade", "Questions", "Matrix")
		fmt.Println(strings.Repeat(rule, 64))
		total := 0
		for _, e := range bank.Summary() {
			fmt.Printf("%-12s  %-30s  %9d  %6d\n", e.Subject, e.Grade, e.Count, e.Matrix)
			total += e.Count
		}
		fmt.Println(strings.Repeat(rule, 64))
		fmt.Printf("%d bank files, %d questions (files covering every grade are counted once per grade)\n",
			len(bank.Files()), total)
		return nil
	},
}

var bankShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the bank questions for a subject and grade, with answers",
	RunE: func(cmd *cobra.Command, args []string) error {
		v := viperForCmd(cmd)
		setupLogging(v, os.Stderr)
		subjectFlag, _ := cmd.Flags().GetString("subject")
		gradeFlag, _ := cmd.Flags().GetString("grade")

		subject, err := quiz.ParseSubject(subjectFlag)
		if err != nil {
			return err
		}
		grade, err := quiz.ParseGrade(gradeFlag)
		if err != nil {
			return err
		}
		bank, err := loadBank(v)
		if err != nil {
			return err
		}

		qs := bank.Lookup(subject, grade)
		if len(qs) == 0 {
			fmt.Printf("No bank questions for %s, %s.\n", subject, grade)
			return nil
		}
		for i, q := range qs {
			writeQuestion(os.Stdout, i+1, len(qs), q, nil, true)
			fmt.Println()
		}
		return nil
	},
}

func init() {
	bankShowCmd.Flags().StringP("subject", "s", "", "Subject (Italiano, Matematica, Inglese, Diritto)")
	bankShowCmd.Flags().StringP("grade", "g", "", "Grade (8, 10, 13)")
	_ = bankShowCmd.MarkFlagRequired("subject")
	_ = bankShowCmd.MarkFlagRequired("grade")

	bankCmd.AddCommand(bankListCmd)
	bankCmd.AddCommand(bankShowCmd)
}
