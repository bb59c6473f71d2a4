package cli

import "stacks-trivia-service/internal/domain"

// defaultBank is the bundled Stacks-ecosystem question set, used directly
// when no Postgres is configured and as the migrate command's seed data.
func defaultBank() []domain.Question {
	return []domain.Question{
		{
			ID:   "q1",
			Text: "What does PoX stand for in the Stacks ecosystem?",
			Options: []string{
				"Proof of Exchange",
				"Proof of Transfer",
				"Proof of Transaction",
				"Power of X",
			},
			CorrectAnswer: 1,
			Category:      "Consensus",
		},
		{
			ID:   "q2",
			Text: "What programming language are smart contracts written in on Stacks?",
			Options: []string{
				"Solidity",
				"JavaScript",
				"Clarity",
				"Rust",
			},
			CorrectAnswer: 2,
			Category:      "Development",
		},
		{
			ID:   "q3",
			Text: "What reward do Stackers receive for locking their STX?",
			Options: []string{
				"More STX tokens",
				"Bitcoin (BTC)",
				"USD stablecoins",
				"NFTs",
			},
			CorrectAnswer: 1,
			Category:      "Stacking",
		},
		{
			ID:   "q4",
			Text: "What is the ratio of sBTC to Bitcoin?",
			Options: []string{
				"1 sBTC = 0.5 BTC",
				"1 sBTC = 1 BTC",
				"1 sBTC = 2 BTC",
				"1 sBTC = 100 BTC",
			},
			CorrectAnswer: 1,
			Category:      "sBTC",
		},
		{
			ID:   "q5",
			Text: "After the Nakamoto upgrade, how fast are Stacks block times?",
			Options: []string{
				"10 minutes",
				"1 minute",
				"Around 5 seconds",
				"1 hour",
			},
			CorrectAnswer: 2,
			Category:      "Nakamoto",
		},
		{
			ID:   "q6",
			Text: "What do Stacks miners do to participate in block production?",
			Options: []string{
				"Solve complex math puzzles",
				"Lock STX tokens",
				"Spend Bitcoin (BTC)",
				"Run a full Bitcoin node",
			},
			CorrectAnswer: 2,
			Category:      "Consensus",
		},
		{
			ID:   "q7",
			Text: "Can Clarity smart contracts read Bitcoin blockchain data?",
			Options: []string{
				"No, they are completely separate",
				"Yes, Clarity can read Bitcoin state",
				"Only if you pay extra fees",
				"Only during testnet",
			},
			CorrectAnswer: 1,
			Category:      "Clarity",
		},
		{
			ID:   "q8",
			Text: "How many Bitcoin blocks make up one Stacking reward cycle?",
			Options: []string{
				"1,000 blocks",
				"2,100 blocks",
				"5,000 blocks",
				"10,000 blocks",
			},
			CorrectAnswer: 1,
			Category:      "Stacking",
		},
		{
			ID:   "q9",
			Text: "What percentage of stacked STX must sign blocks after Nakamoto?",
			Options: []string{
				"51%",
				"66%",
				"70%",
				"80%",
			},
			CorrectAnswer: 2,
			Category:      "Nakamoto",
		},
		{
			ID:   "q10",
			Text: "What does it mean that Clarity is non-Turing complete?",
			Options: []string{
				"It runs faster than other smart contract languages",
				"It has no unbounded loops",
				"It can only run on Bitcoin",
				"It requires special hardware to execute",
			},
			CorrectAnswer: 1,
			Category:      "Clarity",
		},
	}
}
