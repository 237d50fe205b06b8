package experiment

import "fmt"

var (
	welcomeScreen = Screen{Text: "Welcome to the experiment!"}

	consentScreen = Screen{
		Size:  SizeSmall,
		Align: AlignLeft,
		Text: `CONSENT FORM
You are being invited to take part in a research study on how people
perceive and tell apart audio deepfakes and human recordings.
For more information, you can contact the researchers.

Inclusion Criteria:
    - 18 years of age or older
    - Normal or corrected vision
    - No phonagnosia or other impairment of voice recognition

Benefits and Risks
There will be no risks other than those you meet in daily life.

Press 'SPACE' to continue`,
	}

	procedureScreen = Screen{
		Size:  SizeSmall,
		Align: AlignLeft,
		Text: `Study Procedure
You will be presented with short audio recordings, after which you will
indicate whether you think the recording was fake (AI-made) or real (human voice).
You will then rate how confident you are in your judgment (1-5) and how
natural the recording sounded (1-5).
A short practice comes before the actual experiment.

Confidentiality and Data Handling
We collect your age, gender and whether English is your native language.
Your data is identified only by your participant ID.
You can withdraw your consent and stop at any point by pressing 'ESC'.

Participant consent statement
By pressing 'SPACE', I state that I understand the terms presented and
give my consent to take part and for my data to be used as described.

Press 'SPACE' to continue or 'ESC' to exit`,
	}

	instructionsScreen = Screen{Text: `You will hear short audio clips.

Press 'R' if you think it is REAL
Press 'F' if you think it is FAKE

Then you will rate how confident you are in your answer (1-5)
And how natural it sounded (1-5)

Press 'SPACE' to continue`}

	practiceStartScreen    = Screen{Text: "You will now complete a short PRACTICE.\n\nPress SPACE to begin."}
	practiceCompleteScreen = Screen{Text: "Practice complete!\n\nPress SPACE to begin the main experiment."}
	mainStartScreen        = Screen{Text: "Press SPACE to begin the experiment."}

	fixationScreen    = Screen{Text: "+", Size: SizeLarge}
	responseScreen    = Screen{Text: "Real (R) or Fake (F)?"}
	confidenceScreen  = Screen{Text: "How confident are you?\n\n1=Not at all\n5=Very confident\nPress number 1-5"}
	naturalnessScreen = Screen{Text: "How natural did it sound?\n\n1=Very unnatural\n5=Very natural\nPress number 1-5"}
)

func summaryScreen(correct, total int) Screen {
	return Screen{Text: fmt.Sprintf("Thank you for participating!\n\nYou answered correctly on %d out of %d trials.\nPress any key to exit", correct, total)}
}
