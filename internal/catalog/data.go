package catalog

var providers = map[Provider]providerEntry{
	OpenAI: {
		types: map[ModelType]typeEntry{
			Base: {
				defaultModel: "gpt-3.5-turbo-instruct",
				models:       []string{"gpt-3.5-turbo-instruct", "text-davinci-003"},
			},
			Instruct: {
				defaultModel: "gpt-3.5-turbo",
				models: []string{
					"gpt-3.5-turbo", "gpt-3.5-turbo-16k", "gpt-4", "gpt-4-turbo-preview",
					"gpt-4-turbo", "gpt-4o", "gpt-4o-mini",
				},
			},
			FineTuned: {
				defaultModel: "gpt-3.5-turbo-ft",
				models:       []string{"gpt-3.5-turbo-ft", "gpt-4-ft"},
			},
		},
		windows: map[string]int{
			"gpt-3.5-turbo":          4096,
			"gpt-3.5-turbo-16k":      16384,
			"gpt-3.5-turbo-instruct": 4096,
			"gpt-4":                  8192,
			"gpt-4-32k":              32768,
			"gpt-4-turbo":            128000,
			"gpt-4-turbo-preview":    128000,
			"gpt-4o":                 128000,
			"gpt-4o-mini":            128000,
			"text-davinci-003":       4097,
		},
		defaultWindow: 4096,
		characteristics: map[string]Characteristics{
			"gpt-3.5-turbo": {
				ContextWindow:        4096,
				TrainingCutoff:       "2021-09",
				Strengths:            []string{"Fast response", "Cost-effective", "Good general performance"},
				UseCases:             []string{"Chat", "Q&A", "Text completion"},
				FineTuningStrategy:   "Instruction following, human feedback (RLHF)",
				InstructionFollowing: "Excellent",
				CostPer1KTokens:      "$0.001-0.002",
			},
			"gpt-3.5-turbo-16k": {
				ContextWindow:        16384,
				TrainingCutoff:       "2021-09",
				Strengths:            []string{"Larger context", "Fast response", "Cost-effective"},
				UseCases:             []string{"Long document analysis", "Extended conversations"},
				FineTuningStrategy:   "Instruction following, human feedback (RLHF)",
				InstructionFollowing: "Excellent",
				CostPer1KTokens:      "$0.003-0.004",
			},
			"gpt-4": {
				ContextWindow:        8192,
				TrainingCutoff:       "2021-09",
				Strengths:            []string{"Advanced reasoning", "Better accuracy", "Complex tasks"},
				UseCases:             []string{"Complex analysis", "Creative writing", "Problem solving"},
				FineTuningStrategy:   "Advanced RLHF, constitutional AI",
				InstructionFollowing: "Outstanding",
				CostPer1KTokens:      "$0.03-0.06",
			},
			"gpt-4-turbo": {
				ContextWindow:        128000,
				TrainingCutoff:       "2023-12",
				Strengths:            []string{"Large context", "Latest training data", "Multimodal"},
				UseCases:             []string{"Long document processing", "Code analysis", "Research"},
				FineTuningStrategy:   "Advanced RLHF, constitutional AI",
				InstructionFollowing: "Outstanding",
				CostPer1KTokens:      "$0.01-0.03",
			},
			"gpt-4o": {
				ContextWindow:        128000,
				TrainingCutoff:       "2023-10",
				Strengths:            []string{"Multimodal", "Fast", "Cost-effective"},
				UseCases:             []string{"Vision tasks", "Audio processing", "General chat"},
				FineTuningStrategy:   "Optimized RLHF for efficiency",
				InstructionFollowing: "Outstanding",
				CostPer1KTokens:      "$0.005-0.015",
			},
			"gpt-4o-mini": {
				ContextWindow:        128000,
				TrainingCutoff:       "2023-10",
				Strengths:            []string{"Very cost-effective", "Fast", "Good performance"},
				UseCases:             []string{"High-volume applications", "Simple tasks", "Prototyping"},
				FineTuningStrategy:   "Distilled from GPT-4o",
				InstructionFollowing: "Very good",
				CostPer1KTokens:      "$0.0001-0.0006",
			},
			"gpt-3.5-turbo-instruct": {
				ContextWindow:        4096,
				TrainingCutoff:       "2021-09",
				Strengths:            []string{"Text completion", "Lower instruction bias"},
				UseCases:             []string{"Text completion", "Creative writing", "Code completion"},
				FineTuningStrategy:   "Minimal instruction tuning",
				InstructionFollowing: "Basic",
				CostPer1KTokens:      "$0.0015-0.002",
			},
		},
		fallback: Characteristics{
			ContextWindow:        4096,
			TrainingCutoff:       "Unknown",
			Strengths:            []string{"General purpose"},
			UseCases:             []string{"General tasks"},
			FineTuningStrategy:   "Standard",
			InstructionFollowing: "Good",
			CostPer1KTokens:      "Variable",
		},
	},

	Anthropic: {
		types: map[ModelType]typeEntry{
			Instruct: {
				defaultModel: "claude-3-sonnet-20240229",
				models: []string{
					"claude-3-haiku-20240307", "claude-3-sonnet-20240229", "claude-3-opus-20240229",
					"claude-3-5-sonnet-20240620", "claude-2.1", "claude-2.0", "claude-instant-1.2",
				},
			},
		},
		windows: map[string]int{
			"claude-3-haiku-20240307":    200000,
			"claude-3-sonnet-20240229":   200000,
			"claude-3-opus-20240229":     200000,
			"claude-3-5-sonnet-20240620": 200000,
			"claude-2.1":                 200000,
			"claude-2.0":                 100000,
			"claude-instant-1.2":         100000,
		},
		defaultWindow: 200000,
		characteristics: map[string]Characteristics{
			"claude-3-haiku-20240307": {
				ContextWindow:        200000,
				TrainingCutoff:       "2024-02",
				Strengths:            []string{"Fastest Claude 3", "Cost-effective", "Good for simple tasks"},
				UseCases:             []string{"Quick responses", "Simple analysis", "High-volume applications"},
				FineTuningStrategy:   "Constitutional AI, RLHF",
				InstructionFollowing: "Very good",
				CostPer1KTokens:      "$0.00025-0.00125",
			},
			"claude-3-sonnet-20240229": {
				ContextWindow:        200000,
				TrainingCutoff:       "2024-02",
				Strengths:            []string{"Balanced performance", "Good reasoning", "Versatile"},
				UseCases:             []string{"General assistance", "Content creation", "Analysis"},
				FineTuningStrategy:   "Constitutional AI, RLHF",
				InstructionFollowing: "Excellent",
				CostPer1KTokens:      "$0.003-0.015",
			},
			"claude-3-opus-20240229": {
				ContextWindow:        200000,
				TrainingCutoff:       "2024-02",
				Strengths:            []string{"Highest capability", "Complex reasoning", "Creative tasks"},
				UseCases:             []string{"Complex analysis", "Research", "Creative writing"},
				FineTuningStrategy:   "Advanced Constitutional AI, RLHF",
				InstructionFollowing: "Outstanding",
				CostPer1KTokens:      "$0.015-0.075",
			},
			"claude-3-5-sonnet-20240620": {
				ContextWindow:        200000,
				TrainingCutoff:       "2024-04",
				Strengths:            []string{"Latest model", "Improved reasoning", "Better code understanding"},
				UseCases:             []string{"Code analysis", "Complex reasoning", "Latest capabilities"},
				FineTuningStrategy:   "Enhanced Constitutional AI, RLHF",
				InstructionFollowing: "Outstanding",
				CostPer1KTokens:      "$0.003-0.015",
			},
			"claude-2.1": {
				ContextWindow:        200000,
				TrainingCutoff:       "2023-04",
				Strengths:            []string{"Large context", "Good reasoning", "Reduced hallucinations"},
				UseCases:             []string{"Long document analysis", "Research", "Content creation"},
				FineTuningStrategy:   "Constitutional AI, RLHF",
				InstructionFollowing: "Very good",
				CostPer1KTokens:      "$0.008-0.024",
			},
			"claude-2.0": {
				ContextWindow:        100000,
				TrainingCutoff:       "2023-03",
				Strengths:            []string{"Good general performance", "Creative tasks"},
				UseCases:             []string{"General assistance", "Writing", "Analysis"},
				FineTuningStrategy:   "Constitutional AI, RLHF",
				InstructionFollowing: "Good",
				CostPer1KTokens:      "$0.008-0.024",
			},
			"claude-instant-1.2": {
				ContextWindow:        100000,
				TrainingCutoff:       "2023-03",
				Strengths:            []string{"Fast responses", "Cost-effective"},
				UseCases:             []string{"Quick queries", "Simple tasks", "High-volume"},
				FineTuningStrategy:   "Streamlined Constitutional AI",
				InstructionFollowing: "Good",
				CostPer1KTokens:      "$0.0008-0.0024",
			},
		},
		fallback: Characteristics{
			ContextWindow:        200000,
			TrainingCutoff:       "Unknown",
			Strengths:            []string{"General purpose"},
			UseCases:             []string{"General tasks"},
			FineTuningStrategy:   "Constitutional AI",
			InstructionFollowing: "Good",
			CostPer1KTokens:      "Variable",
		},
	},

	HuggingFace: {
		types: map[ModelType]typeEntry{
			Base: {
				defaultModel: "meta-llama/Llama-2-7b-hf",
				models: []string{
					"meta-llama/Llama-2-7b-hf", "meta-llama/Llama-2-13b-hf", "mistralai/Mistral-7B-v0.1",
					"microsoft/DialoGPT-large", "EleutherAI/gpt-neo-2.7B",
				},
			},
			Instruct: {
				defaultModel: "meta-llama/Llama-2-7b-chat-hf",
				models: []string{
					"meta-llama/Llama-2-7b-chat-hf", "meta-llama/Llama-2-13b-chat-hf",
					"mistralai/Mistral-7B-Instruct-v0.1", "microsoft/DialoGPT-large",
					"HuggingFaceH4/zephyr-7b-beta", "openchat/openchat-3.5-1210",
				},
			},
			FineTuned: {
				defaultModel: "codellama/CodeLlama-7b-Python-hf",
				models: []string{
					"codellama/CodeLlama-7b-Python-hf", "codellama/CodeLlama-7b-Instruct-hf",
					"WizardLM/WizardCoder-15B-V1.0", "Salesforce/codegen-2B-Python", "bigcode/starcoderbase-1b",
				},
			},
		},
		windows: map[string]int{
			"meta-llama/Llama-2-7b-hf":           4096,
			"meta-llama/Llama-2-7b-chat-hf":      4096,
			"meta-llama/Llama-2-13b-hf":          4096,
			"meta-llama/Llama-2-13b-chat-hf":     4096,
			"mistralai/Mistral-7B-v0.1":          32768,
			"mistralai/Mistral-7B-Instruct-v0.1": 32768,
			"codellama/CodeLlama-7b-Python-hf":   16384,
			"codellama/CodeLlama-7b-Instruct-hf": 16384,
			"HuggingFaceH4/zephyr-7b-beta":       32768,
			"openchat/openchat-3.5-1210":         8192,
		},
		defaultWindow: 4096,
		characteristics: map[string]Characteristics{
			"meta-llama/Llama-2-7b-hf": {
				ContextWindow:        4096,
				TrainingCutoff:       "2023-07",
				Strengths:            []string{"Open source", "Good general performance", "Commercial use"},
				UseCases:             []string{"Text completion", "Research", "Fine-tuning base"},
				FineTuningStrategy:   "Supervised fine-tuning",
				InstructionFollowing: "Basic",
				CostPer1KTokens:      "Free (self-hosted)",
			},
			"meta-llama/Llama-2-7b-chat-hf": {
				ContextWindow:        4096,
				TrainingCutoff:       "2023-07",
				Strengths:            []string{"Chat optimized", "Open source", "Safety focused"},
				UseCases:             []string{"Conversational AI", "Q&A", "Assistant applications"},
				FineTuningStrategy:   "RLHF for helpfulness and safety",
				InstructionFollowing: "Very good",
				CostPer1KTokens:      "Free (self-hosted)",
			},
			"meta-llama/Llama-2-13b-chat-hf": {
				ContextWindow:        4096,
				TrainingCutoff:       "2023-07",
				Strengths:            []string{"Larger model", "Better performance", "Chat optimized"},
				UseCases:             []string{"Advanced chat", "Complex reasoning", "Content creation"},
				FineTuningStrategy:   "RLHF for helpfulness and safety",
				InstructionFollowing: "Excellent",
				CostPer1KTokens:      "Free (self-hosted)",
			},
			"mistralai/Mistral-7B-v0.1": {
				ContextWindow:        32768,
				TrainingCutoff:       "2023-09",
				Strengths:            []string{"Large context", "Efficient", "Open source"},
				UseCases:             []string{"Long document processing", "Code analysis"},
				FineTuningStrategy:   "Standard pre-training",
				InstructionFollowing: "Basic",
				CostPer1KTokens:      "Free (self-hosted)",
			},
			"mistralai/Mistral-7B-Instruct-v0.1": {
				ContextWindow:        32768,
				TrainingCutoff:       "2023-09",
				Strengths:            []string{"Instruction following", "Large context", "Efficient"},
				UseCases:             []string{"Task completion", "Q&A", "Analysis"},
				FineTuningStrategy:   "Instruction fine-tuning",
				InstructionFollowing: "Very good",
				CostPer1KTokens:      "Free (self-hosted)",
			},
			"codellama/CodeLlama-7b-Python-hf": {
				ContextWindow:        16384,
				TrainingCutoff:       "2023-07",
				Strengths:            []string{"Python specialized", "Code understanding", "Open source"},
				UseCases:             []string{"Python code generation", "Code completion", "Debugging"},
				FineTuningStrategy:   "Code-specific fine-tuning on Python",
				InstructionFollowing: "Good (code-focused)",
				CostPer1KTokens:      "Free (self-hosted)",
			},
			"codellama/CodeLlama-7b-Instruct-hf": {
				ContextWindow:        16384,
				TrainingCutoff:       "2023-07",
				Strengths:            []string{"Code instruction following", "Multi-language", "Open source"},
				UseCases:             []string{"Code generation", "Code explanation", "Programming help"},
				FineTuningStrategy:   "Code + instruction fine-tuning",
				InstructionFollowing: "Very good (code tasks)",
				CostPer1KTokens:      "Free (self-hosted)",
			},
			"HuggingFaceH4/zephyr-7b-beta": {
				ContextWindow:        32768,
				TrainingCutoff:       "2023-10",
				Strengths:            []string{"Chat optimized", "DPO training", "Open source"},
				UseCases:             []string{"Conversational AI", "Helpful assistant", "Q&A"},
				FineTuningStrategy:   "DPO (Direct Preference Optimization)",
				InstructionFollowing: "Excellent",
				CostPer1KTokens:      "Free (self-hosted)",
			},
		},
		fallback: Characteristics{
			ContextWindow:        4096,
			TrainingCutoff:       "Unknown",
			Strengths:            []string{"Open source", "Customizable"},
			UseCases:             []string{"General tasks", "Research"},
			FineTuningStrategy:   "Standard",
			InstructionFollowing: "Variable",
			CostPer1KTokens:      "Free (self-hosted)",
		},
	},

	Gemini: {
		types: map[ModelType]typeEntry{
			Instruct: {
				defaultModel: "gemini-1.5-flash",
				models:       []string{"gemini-1.5-flash", "gemini-1.5-pro", "gemini-2.0-flash"},
			},
		},
		windows: map[string]int{
			"gemini-1.5-flash": 1048576,
			"gemini-1.5-pro":   2097152,
			"gemini-2.0-flash": 1048576,
			"gemini-pro":       32768,
		},
		defaultWindow: 32768,
		characteristics: map[string]Characteristics{
			"gemini-1.5-flash": {
				ContextWindow:        1048576,
				TrainingCutoff:       "2023-11",
				Strengths:            []string{"Multimodal", "Very large context", "Fast"},
				UseCases:             []string{"Image Q&A", "Long document analysis", "High-volume applications"},
				FineTuningStrategy:   "Instruction tuning, RLHF",
				InstructionFollowing: "Very good",
				CostPer1KTokens:      "$0.000075-0.0003",
			},
			"gemini-1.5-pro": {
				ContextWindow:        2097152,
				TrainingCutoff:       "2023-11",
				Strengths:            []string{"Multimodal", "Largest context", "Complex reasoning"},
				UseCases:             []string{"Video and image analysis", "Research", "Code analysis"},
				FineTuningStrategy:   "Instruction tuning, RLHF",
				InstructionFollowing: "Excellent",
				CostPer1KTokens:      "$0.00125-0.005",
			},
			"gemini-2.0-flash": {
				ContextWindow:        1048576,
				TrainingCutoff:       "2024-08",
				Strengths:            []string{"Native tool use", "Multimodal", "Low latency"},
				UseCases:             []string{"Function calling", "Agents", "Vision tasks"},
				FineTuningStrategy:   "Instruction tuning, RLHF",
				InstructionFollowing: "Excellent",
				CostPer1KTokens:      "$0.0001-0.0004",
			},
		},
		fallback: Characteristics{
			ContextWindow:        32768,
			TrainingCutoff:       "Unknown",
			Strengths:            []string{"Multimodal"},
			UseCases:             []string{"General tasks"},
			FineTuningStrategy:   "Instruction tuning",
			InstructionFollowing: "Good",
			CostPer1KTokens:      "Variable",
		},
	},
}
