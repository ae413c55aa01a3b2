package app

import "fmt"

// All user-facing copy lives here. The bot speaks Slack mrkdwn with emoji;
// commands are referenced as direct mentions of the bot user.

func mention(botID string) string {
	return fmt.Sprintf("<@%s>", botID)
}

const divider = "===================================================================================================="

func msgSessionStarting() string {
	return ":military_helmet: We're starting a new retrospective session - helmets on!"
}

func msgAlreadyInProgress(botID string) string {
	return fmt.Sprintf(`:runner: Shucks!
It looks like a retro session is already in progress in this channel.
You can either wait for it to finish, stop it yourself (`+"`%s stop`"+`) or start a new one in another channel`, mention(botID))
}

func msgStoppedNotSummarized(botID string) string {
	return fmt.Sprintf(`:hand: Hold on!
It looks like a retro session was stopped but not summarized yet.
You should sum it up (`+"`%s sum`"+`) or start a new one in another channel`, mention(botID))
}

func msgFeedbackInstructions() string {
	return `:ear: Ok, I'm all ears!
Tell me what worked well (start with a ` + "`+`" + `) and what needs improvement (start with a ` + "`-`" + `).
Each item should be a new line (separated by ENTER).
If you made a mistake, you can edit or delete a message - I'll handle the logistics.

Pro tip: Don't put a space between the ` + "`-`" + ` sign and your first word - it'll turn into a bulleted list (e.g.: ` + "`-no one ate my broccoli cake :-(`" + `)`
}

func msgRosterFailure() string {
	return ":poop: Oy vey! Some error has occured - I can't find anyone in this channel. Aborting operation."
}

func msgNoSessionToStop(botID string) string {
	return fmt.Sprintf(`:face_with_raised_eyebrow: That's funny..
I don't remember running an active retro for this channel at this time.
Maybe you forgot to start one? You can do that by typing `+"`%s start`", mention(botID))
}

func msgGatherBack() string {
	return ":grinning_face_with_star_eyes: Let's gather everyone back - I'll start printing all the feedback I got shortly."
}

func msgStopDM(channelID string) string {
	return fmt.Sprintf(`:hand: We're done here!
Get back to the retro channel at <#%s>`, channelID)
}

func msgWorkedWellHeader() string {
	return divider + "\n:sparkles: What worked well :sparkles:"
}

func msgNeedsImprovementHeader() string {
	return divider + "\n:construction: What needs improvement :construction:"
}

func msgRevealItem(text, userName string) string {
	return fmt.Sprintf("%s (%s)", text, userName)
}

func msgVotingInstructions(botID string) string {
	return fmt.Sprintf(divider+`
:hourglass_flowing_sand: It's go time - start voting!
Use :+1: to upvote items that you want to discuss from the "Needs improvement" pile.

Once everyone has voted, someone should type `+"`%s sum [N]`"+` to sum up the top [N] most voted-upon items (default is 3).`, mention(botID))
}

func msgSumNoSession(botID string) string {
	return fmt.Sprintf(`:thinking_face: Sum up what?
There's no retro session running here.
You can start one by typing `+"`%s start`"+`.`, mention(botID))
}

func msgSumStillCollecting(botID string) string {
	return fmt.Sprintf(`:hand: Hey, wait a minute!
This retro is still in session.
You should stop it first (`+"`%s stop`"+`) and then run `+"`%s sum`", mention(botID), mention(botID))
}

func msgSummaryHeader(count int) string {
	return fmt.Sprintf(`:mega: Below are the %d most voted-upon messages from the "Needs improvement" pile.

Pro tip: You can discuss them and leave summaries and action items in each message's thread, to be followed-up in the next retro session.`, count)
}

func msgGoodbye() string {
	return "\nWell, I guess this is goodbye.. See you next time! :wave: "
}

func msgHelp(botID string, defaultLimit int) string {
	m := mention(botID)
	return fmt.Sprintf(`:paperclip: It looks like you need some help!

Here are the commands I support, and how to use them:
`+"`%s start`"+` - this is how you start a new retro session (you need me in this channel too, so don't forget to invite me first)
`+"`%s stop`"+` - once everyone has given feedback, call this to gather all of it and present it for everyone to vote on
`+"`%s sum [N]`"+` - after everyone has voted, print the most [N] (default: %d) voted messages that are in the "Needs improvement" pile, and end the session
`+"`%s help`"+` - shows this help message, obviously
`+"`%s wake up`"+` - pings Retrobot, in case it was sleeping
`+"`%s status`"+` - show the status of the retro session in this channel, if it's in progress
`+"`%s channels`"+` - show a list of all the channels that I'm currently running retro sessions in, and what stage they're in
`+"`%s terminate session`"+` - :warning: this will immediately TERMINATE the retro session in this channel - WITHOUT EXTRA CONFIRMATION! :warning:

I hope that helped!`, m, m, m, defaultLimit, m, m, m, m, m)
}

func msgWakeUp() string {
	return "I'm up, I'm up! I wasn't sleeping anyway.. :yawning_face:"
}

func msgStatusNone() string {
	return ":shrug: Nope, nada, zilch - no retro sessions in this channel."
}

func msgStatusCollecting() string {
	return ":shushing_face: Shhh! A retro session is currently running in this channel, and everyone's busy giving feedback. Try not to interrupt!"
}

func msgStatusVoting() string {
	return ":point_up: A retro session is currently being voted upon in this channel. You can idly stand by or join the process - up to you!"
}

func msgChannelsNone() string {
	return ":shrug: There are no retro sessions currently running."
}

func msgChannelsHeader() string {
	return ":mag_right: Here are the channels in which a retro session is currently in progress:"
}

func msgChannelsEntry(channelID, stage string) string {
	return fmt.Sprintf("<#%s> (%s)", channelID, stage)
}

func msgTerminateNoSession() string {
	return ":confused: I'm bit confused here - there's no running retro session in this channel"
}

func msgTerminateDM(channelID string) string {
	return fmt.Sprintf(`:warning: Someone has cut the session short!
Get back to the retro channel at <#%s>`, channelID)
}

func msgTerminated() string {
	return "Ok, I completely removed the current retro session. See you next time! :wave:"
}

func msgNoSessionsForFeedback() string {
	return ":no_entry_sign: Sorry - there aren't any retro sessions in progress right now."
}

func msgNotEnrolled() string {
	return ":no_entry_sign: Sorry, I couldn't find you in any retro session."
}

func msgFeedbackUsage() string {
	return ":hand: You can only send two types of feedbacks: `+<something that went well>`, or `-<something that needs improvement>`"
}
