package seed

import "trainbot/internal/models"

type lessonSeed struct {
	Title       string
	Description string
	Kind        string
	SortOrder   int
	Steps       []string
	Examples    []exampleSeed
}

type exampleSeed struct {
	PromptText    string
	ResultPreview string
}

type questionSeed struct {
	Text      string
	SortOrder int
}

type quizSeed struct {
	Title       string
	Description string
	LessonTitle string // resolved to an ID at seeding time, may be empty
	Questions   []questionSeed
}

var lessonSeeds = []lessonSeed{
	{
		Title:       "What Is a Prompt",
		Description: "The anatomy of a prompt: instruction, context, input, and output format.",
		Kind:        models.KindText,
		SortOrder:   1,
		Steps: []string{
			"A prompt is the instruction you give a language model. The model has no idea what you want beyond what you write, so everything the answer depends on has to be in the prompt.\n\nCompare:\n\"Write about dogs\" — the model guesses length, tone, and audience.\n\"Write a 100-word paragraph about guide dogs for a children's magazine\" — nothing is left to guess.",
			"Most strong prompts contain four parts:\n\n1. Instruction — what to do (\"summarize\", \"translate\", \"write\")\n2. Context — background the model needs\n3. Input — the material to work on\n4. Output format — length, structure, style\n\nYou rarely need all four, but knowing them helps you see what's missing when a result disappoints.",
			"Practice reading prompts critically. When a response misses the mark, don't retry the same words louder. Find which of the four parts was absent and add it.\n\nIn the next lessons you'll tighten each part separately.",
		},
		Examples: []exampleSeed{
			{
				PromptText:    "Summarize the following article in three bullet points for a busy executive. Keep each bullet under 15 words.",
				ResultPreview: "Three crisp bullets, no fluff",
			},
			{
				PromptText:    "Translate this email to formal French. Preserve the greeting and sign-off structure.",
				ResultPreview: "A business-ready French email",
			},
		},
	},
	{
		Title:       "Specificity and Context",
		Description: "How detail and background information steer the model toward the answer you want.",
		Kind:        models.KindText,
		SortOrder:   2,
		Steps: []string{
			"Vague prompts force the model to fill gaps with averages. Specific prompts collapse the possibilities.\n\nSpecify the audience (\"for a 10-year-old\"), the role (\"as an experienced tax advisor\"), the constraints (\"using only ingredients from a corner shop\"), and the goal (\"to convince a skeptical customer\").",
			"Context is the background the model cannot infer. If you ask for a follow-up email, paste the thread. If you ask for feedback on a lesson plan, include the students' level.\n\nA good habit: before sending a prompt, ask \"could a stranger answer this well with only what I wrote?\" If not, the model can't either.",
			"Constraints are specificity's sharpest tool: word limits, forbidden words, required structure. \"Explain recursion\" invites rambling. \"Explain recursion in exactly three sentences, each shorter than the last\" produces discipline.",
		},
		Examples: []exampleSeed{
			{
				PromptText:    "You are an experienced English teacher. Write five B1-level comprehension questions for the attached text, ordered from easiest to hardest.",
				ResultPreview: "Graded questions matching the level",
			},
		},
	},
	{
		Title:       "Advanced Techniques",
		Description: "Few-shot examples, chain-of-thought, and iterating on a prompt.",
		Kind:        models.KindText,
		SortOrder:   3,
		Steps: []string{
			"Few-shot prompting shows the model what you want instead of describing it. Give two or three input-output pairs, then the real input. The model continues the pattern, including formatting you never explained in words.",
			"Chain-of-thought prompting asks the model to reason before answering: \"think step by step\". For math, logic, and planning tasks this markedly improves accuracy, because early mistakes surface where you can see them.",
			"Treat prompting as iteration, not incantation. Keep the parts that worked, change one thing at a time, and save prompts that perform well. A prompt that reliably produces good lesson material is a reusable asset.",
		},
		Examples: []exampleSeed{
			{
				PromptText:    "Classify sentiment. Examples: \"Loved it\" -> positive. \"Never again\" -> negative. Now classify: \"It was fine I guess\"",
				ResultPreview: "neutral",
			},
		},
	},
	{
		Title:       "Describing the Subject",
		Description: "Building image prompts around a clear main subject.",
		Kind:        models.KindImage,
		SortOrder:   1,
		Steps: []string{
			"Image models paint what you name first and best. Lead with the subject: \"a lighthouse keeper\", \"an ancient oak\", \"a street market in the rain\".\n\nThen qualify it: age, material, mood, action. \"An elderly lighthouse keeper in a yellow raincoat, laughing\" gives the model a scene, not just a noun.",
			"Order matters. Words early in the prompt carry more weight. Put the subject before the background, and the essential details before the decorative ones.\n\nWeak: \"a beautiful amazing picture with nice light of maybe a cat\"\nStrong: \"a black cat curled on a sunlit windowsill, soft morning light\"",
		},
		Examples: []exampleSeed{
			{
				PromptText:    "a red fox standing in fresh snow, alert ears, golden hour light, shallow depth of field",
				ResultPreview: "Crisp fox portrait against snow",
			},
		},
	},
	{
		Title:       "Style and Composition",
		Description: "Art styles, camera language, and arranging the frame.",
		Kind:        models.KindImage,
		SortOrder:   2,
		Steps: []string{
			"Style keywords transform the same subject: \"watercolor\", \"oil painting\", \"pixel art\", \"studio photography\", \"in the style of a vintage travel poster\". Pick one style per prompt; mixing three produces mush.",
			"Composition terms come from photography: \"close-up\", \"wide shot\", \"bird's-eye view\", \"rule of thirds\", \"centered symmetrical composition\". Lighting terms matter just as much: \"golden hour\", \"dramatic rim lighting\", \"soft diffused light\".",
			"Quality modifiers (\"highly detailed\", \"masterpiece\", \"best quality\", \"8k\") nudge the model toward its better outputs. Use a few at the end of the prompt. They are seasoning, not the meal — the subject and style still do the real work.",
		},
		Examples: []exampleSeed{
			{
				PromptText:    "cozy reading nook by a rainy window, warm lamp light, watercolor style, soft edges, muted palette",
				ResultPreview: "Warm watercolor interior scene",
			},
		},
	},
	{
		Title:       "Negative Prompts and Refinement",
		Description: "Steering the model away from artifacts and iterating to the final image.",
		Kind:        models.KindImage,
		SortOrder:   3,
		Steps: []string{
			"A negative prompt lists what must not appear: \"blurry, extra fingers, watermark, text\". Models prone to certain artifacts improve sharply when you name those artifacts in the negative prompt.",
			"Refine in small steps. Keep the seed fixed if the tool allows it, change one phrase, and compare. When a composition is nearly right, describe the change you want (\"same scene, camera slightly lower, warmer light\") instead of starting over.",
		},
		Examples: []exampleSeed{
			{
				PromptText:    "portrait of a violinist on stage, dramatic spotlight, photorealistic — negative: blurry, distorted hands, text, watermark",
				ResultPreview: "Clean stage portrait, no artifacts",
			},
		},
	},
}

var quizSeeds = []quizSeed{
	{
		Title:       "Prompt Engineering Basics Quiz",
		Description: "Test your knowledge of prompt creation fundamentals.",
		LessonTitle: "What Is a Prompt",
		Questions: []questionSeed{
			{Text: "What is a prompt?", SortOrder: 1},
			{Text: "Name 2 main types of prompts.", SortOrder: 2},
			{Text: "Which component in a prompt sets its main goal?", SortOrder: 3},
			{Text: "What is 'temperature' in the context of text generation?", SortOrder: 4},
			{Text: "How can you improve detail in a model's response?", SortOrder: 5},
			{Text: "What is 'few-shot' prompting?", SortOrder: 6},
			{Text: "Which operator is used to specify word weight in a prompt?", SortOrder: 7},
			{Text: "How to avoid bias in model responses?", SortOrder: 8},
			{Text: "What is 'Chain of Thought' prompting?", SortOrder: 9},
			{Text: "How to properly format a prompt to get code?", SortOrder: 10},
		},
	},
	{
		Title:       "Image Generation Quiz",
		Description: "Test your knowledge of creating prompts for image generation.",
		LessonTitle: "Describing the Subject",
		Questions: []questionSeed{
			{Text: "Which parameter controls the aspect ratio of an image?", SortOrder: 1},
			{Text: "What is a negative prompt?", SortOrder: 2},
			{Text: "How can you specify image style in a prompt?", SortOrder: 3},
			{Text: "What is 'seed' and what is it used for?", SortOrder: 4},
			{Text: "How can you blend two images in a prompt?", SortOrder: 5},
			{Text: "Which parameter affects the model's 'creativity' in image generation?", SortOrder: 6},
			{Text: "How can you use an image as a reference?", SortOrder: 7},
			{Text: "What are 'outpainting' and 'inpainting'?", SortOrder: 8},
			{Text: "How can you animate a generated image?", SortOrder: 9},
			{Text: "Which file format is best for saving generated images without quality loss?", SortOrder: 10},
		},
	},
	{
		Title:       "Text Prompts for Teachers",
		Description: "Create a prompt for a language model.",
		LessonTitle: "Specificity and Context",
		Questions: []questionSeed{
			{Text: "Create a prompt to generate a dialogue between two friends discussing weekend plans. The dialogue should be in English, Intermediate level (B1), and contain at least 5 lines from each participant.", SortOrder: 1},
		},
	},
	{
		Title:       "Image Prompts",
		Description: "Create a prompt for image generation.",
		LessonTitle: "Style and Composition",
		Questions: []questionSeed{
			{Text: "Create a prompt to generate an image illustrating the idiom 'break a leg'. The image should be in cartoon style and show an actor on stage.", SortOrder: 1},
		},
	},
	{
		Title:       "Creative Games for Lessons",
		Description: "Create a prompt to generate a language game idea.",
		LessonTitle: "Advanced Techniques",
		Questions: []questionSeed{
			{Text: "Create a prompt to generate a 'Detective Agency' game where students must guess the 'criminal' (a word or grammatical construction) through leading questions.", SortOrder: 1},
			{Text: "Come up with a prompt to create an auction game where lots are rare words, and students 'buy' them by composing sentences with these words.", SortOrder: 2},
			{Text: "Create a prompt for a 'Linguistic Charades' game where you need to explain words or phrases using synonyms, antonyms, and descriptions without naming the word itself.", SortOrder: 3},
			{Text: "Come up with a prompt to create a 'Time Travel' role-playing game where students find themselves in different eras and must use appropriate vocabulary.", SortOrder: 4},
			{Text: "Create a prompt for a 'Poetry Battle' game where students compete in writing short poems on a given topic using a specific set of words.", SortOrder: 5},
			{Text: "Come up with a prompt to create a 'Cooking Show' game where students must 'cook' a dish, describing the process and ingredients in the target language.", SortOrder: 6},
			{Text: "Create a prompt for a 'News Agency' game where students as journalists create reports about fictional events.", SortOrder: 7},
			{Text: "Come up with a prompt to create an 'Invention Machine' game where students must invent and describe a fantastic device using technical vocabulary.", SortOrder: 8},
			{Text: "Create a prompt for a 'Devil's Advocate' game where one student defends an unpopular viewpoint while others try to convince them otherwise.", SortOrder: 9},
			{Text: "Come up with a prompt to create a 'Cartographers' game where students create a map of a fictional world and describe its geography, flora, and fauna.", SortOrder: 10},
		},
	},
	{
		Title:       "Creative Assignments for Students",
		Description: "Create a prompt to generate a creative assignment.",
		LessonTitle: "Advanced Techniques",
		Questions: []questionSeed{
			{Text: "Create a prompt that asks a student to write a diary entry from the perspective of a historical figure witnessing an important event.", SortOrder: 1},
			{Text: "Come up with a prompt to create an assignment where a student needs to write a script for a short video on a social topic.", SortOrder: 2},
			{Text: "Create a prompt that suggests a student interview an inanimate object (for example, an old lamp or street light).", SortOrder: 3},
			{Text: "Come up with a prompt for an assignment where you need to create an advertising slogan and short text for a fantastic product.", SortOrder: 4},
			{Text: "Create a prompt that asks a student to write survival instructions for a zombie apocalypse using only 10 nouns.", SortOrder: 5},
			{Text: "Come up with a prompt for an assignment where a student must write a review of a non-existent movie or book based only on its title.", SortOrder: 6},
			{Text: "Create a prompt that suggests a student rewrite a famous fairy tale by changing the main character's personality to the opposite.", SortOrder: 7},
			{Text: "Come up with a prompt for an assignment where you need to create a playlist for a book character and explain the choice of each song.", SortOrder: 8},
			{Text: "Create a prompt that asks a student to write a letter to the future, addressed to themselves in 10 years.", SortOrder: 9},
			{Text: "Come up with a prompt for an assignment where a student needs to create a new superhero, describing their abilities, costume, and main enemy.", SortOrder: 10},
		},
	},
}
